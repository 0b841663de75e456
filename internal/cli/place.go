package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/htfab/tt-multiplexer/pkg/archive"
	"github.com/htfab/tt-multiplexer/pkg/cache"
	"github.com/htfab/tt-multiplexer/pkg/pipeline"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

// placeOpts holds the command-line flags for the place command.
type placeOpts struct {
	freeze  string // write the placed module list here
	archive string // archive the placement (directory or mongodb:// URL)
	restore bool   // place the latest archived module list instead
	quiet   bool   // skip the grid map and table
}

// placeCommand creates the place command.
func (c *CLI) placeCommand() *cobra.Command {
	var opts placeOpts

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place the module list on the tile grid",
		Long: `Place every module of the module list on the tile grid and print the
resulting map. With --freeze, the module list is written back with every
module pinned to its placed cell, so later runs reproduce the placement.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlace(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.freeze, "freeze", "", "write the placed module list to this file")
	cmd.Flags().StringVar(&opts.archive, "archive", "", "archive the placement in a directory or mongodb:// URL")
	cmd.Flags().BoolVar(&opts.restore, "restore", false, "place the latest archived module list for this configuration")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the grid map")

	return cmd
}

func (c *CLI) runPlace(cmd *cobra.Command, opts placeOpts) error {
	ctx := cmd.Context()

	cfg, modules, err := c.loadInputs()
	if err != nil {
		return err
	}
	cfgHash, err := cache.HashJSON(cfg)
	if err != nil {
		return err
	}

	var arch archive.Archive
	if opts.archive != "" || opts.restore {
		if arch, err = archive.Open(ctx, opts.archive); err != nil {
			return err
		}
		defer arch.Close()
	}
	if opts.restore {
		rec, err := arch.Latest(ctx, cfgHash)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("no archived placement for this configuration")
		}
		printInfo("Restoring placement %s from %s", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"))
		modules = rec.Modules
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	p, hit, err := runner.PlaceWithCacheInfo(ctx, pipeline.Options{Config: cfg, Modules: modules, Logger: c.Logger})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Placed %d modules", p.Len()))

	if !opts.quiet {
		fmt.Fprint(stdout, gridMap(p, placer.Cell{X: -1, Y: -1}))
		fmt.Fprintln(stdout, moduleTable(p))
	}
	printStats([]string{
		fmt.Sprintf("%d modules", p.Len()),
		fmt.Sprintf("%d free cells", p.FreeCount()),
	}, hit)

	if opts.freeze != "" {
		if err := placer.SaveModules(opts.freeze, p.Modules()); err != nil {
			return err
		}
		printSuccess("Froze placement")
		printFile(opts.freeze)
	}

	if opts.archive != "" {
		rec := archive.NewRecord(cfgHash, p)
		if err := arch.Save(ctx, rec); err != nil {
			return err
		}
		printSuccess("Archived placement %s", rec.ID)
	}
	return nil
}
