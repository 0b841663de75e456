package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/render"
	"github.com/htfab/tt-multiplexer/pkg/render/hier"
	"github.com/htfab/tt-multiplexer/pkg/render/svg"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, res *Result, opts Options) (map[string][]byte, error) {
	if opts.Hier {
		return renderHier(ctx, res, opts)
	}
	return renderDie(ctx, res, opts)
}

// renderDie draws the die itself. PNG and PDF are converted from the SVG.
func renderDie(ctx context.Context, res *Result, opts Options) (map[string][]byte, error) {
	var svgOpts []svg.Option
	if opts.NoPins {
		svgOpts = append(svgOpts, svg.WithoutPins())
	}
	if opts.Labels {
		svgOpts = append(svgOpts, svg.WithLabels())
	}

	var doc []byte
	vector := func() []byte {
		if doc == nil {
			doc = svg.Render(res.Floorplan, svgOpts...)
		}
		return doc
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = vector()
		case FormatPNG:
			data, err = render.ToPNG(ctx, vector(), DefaultPNGZoom)
		case FormatPDF:
			data, err = render.ToPDF(ctx, vector())
		case FormatJSON:
			data, err = MarshalSummary(res.Summary)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported floorplan format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderHier draws the instance hierarchy with Graphviz.
func renderHier(ctx context.Context, res *Result, opts Options) (map[string][]byte, error) {
	dot := hier.ToDOT(res.Floorplan.Die, hier.Options{Detailed: opts.Labels})

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = hier.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = hier.RenderPNG(ctx, dot)
		case FormatPDF:
			data, err = hier.RenderPDF(ctx, dot)
		case FormatJSON:
			data, err = MarshalSummary(res.Summary)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported hierarchy format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// MarshalSummary encodes s as indented JSON.
func MarshalSummary(s Summary) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
