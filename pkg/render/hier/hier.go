// Package hier renders the macro instance hierarchy of a floorplan as a
// Graphviz tree: one node per named element, one edge per containment.
package hier

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/htfab/tt-multiplexer/pkg/errors"
	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/render"
)

// Options configures the hierarchy diagram.
type Options struct {
	// Detailed adds the macro name, orientation and position to each node.
	Detailed bool
}

var kindColors = map[floorplan.Kind]string{
	floorplan.KindTop:        "lightslategray",
	floorplan.KindBranch:     "white",
	floorplan.KindMux:        "mediumpurple1",
	floorplan.KindBlock:      "lightcoral",
	floorplan.KindController: "darkolivegreen2",
}

// ToDOT converts the element tree below die to DOT.
func ToDOT(die *floorplan.Element, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  die [label=\"die\", shape=folder];\n")
	writeChildren(&buf, "die", "", die, opts)
	buf.WriteString("}\n")
	return buf.String()
}

func writeChildren(buf *bytes.Buffer, parentID, prefix string, e *floorplan.Element, opts Options) {
	for _, c := range e.Children {
		if c.Name == "" {
			continue
		}
		id := prefix + c.Name
		fmt.Fprintf(buf, "  %q [%s];\n", id, strings.Join(nodeAttrs(c, opts), ", "))
		fmt.Fprintf(buf, "  %q -> %q;\n", parentID, id)
		writeChildren(buf, id, id+".", c.Elem, opts)
	}
}

func nodeAttrs(c floorplan.Child, opts Options) []string {
	label := unescape(c.Name)
	if opts.Detailed {
		if c.Elem.ModName != "" {
			label += "\n" + c.Elem.ModName
		}
		label += fmt.Sprintf("\n%s %s", c.Orient, c.Pos)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if color, ok := kindColors[c.Elem.Kind]; ok {
		attrs = append(attrs, "fillcolor="+color)
	}
	return attrs
}

// unescape drops the DEF escapes from an instance name.
func unescape(name string) string {
	return strings.ReplaceAll(name, `\`, "")
}

// RenderSVG renders DOT to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.SVG)
}

// RenderPNG renders DOT to PNG using the embedded Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

// RenderPDF renders DOT as PDF via SVG conversion. Requires librsvg.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	return buf.Bytes(), nil
}
