package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/htfab/tt-multiplexer/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single format) or base path (multiple)
	formats []string // svg, png, pdf, json, dot
	hier    bool     // render the instance hierarchy instead of the die
	labels  bool     // label elements (die) or show orientations (hierarchy)
	noPins  bool     // omit pin bars from the die drawing
	refresh bool     // ignore cached results
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the floorplan to SVG, PNG, PDF or JSON",
		Long: `Place the module list, build the floorplan and render it.

PNG and PDF output of the die drawing requires rsvg-convert. With --hier the
macro instance hierarchy is drawn with Graphviz instead, and the dot format
emits the Graphviz source.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.hier, "hier", false, "render the instance hierarchy with Graphviz")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "label elements with their instance names")
	cmd.Flags().BoolVar(&opts.noPins, "no-pins", false, "omit pins from the die drawing")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts renderOpts) error {
	ctx := cmd.Context()

	cfg, modules, err := c.loadInputs()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Config:  cfg,
		Modules: modules,
		Formats: opts.formats,
		Hier:    opts.hier,
		Labels:  opts.labels,
		NoPins:  opts.noPins,
		Refresh: opts.refresh,
		Logger:  c.Logger,
	}
	if err := popts.Validate(); err != nil {
		return err
	}

	var spin *spinner
	if slices.Contains(opts.formats, pipeline.FormatPNG) || slices.Contains(opts.formats, pipeline.FormatPDF) {
		spin = newSpinner(ctx, "Rendering...")
		spin.start()
	}
	res, err := runner.Execute(ctx, popts)
	if spin != nil {
		spin.stop()
	}
	if err != nil {
		return err
	}

	printSuccess("Rendered floorplan")
	printStats([]string{res.Stats.String()}, res.CacheInfo.RenderHit)

	base := basePath(opts.output, opts.hier)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path. Without --output the drawing is
// named after what it shows; a known format extension on output is stripped.
func basePath(output string, hier bool) string {
	if output == "" {
		if hier {
			return "hierarchy"
		}
		return "floorplan"
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
