package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/tracks"
)

// tracksCommand creates the tracks command, which prints the pin tables.
// They only depend on the configuration, so no module list is read.
func (c *CLI) tracksCommand() *cobra.Command {
	var (
		output string
		table  string
	)

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Print the pin track tables",
		Long: `Compute the global dimensions and the pin tables of every interface
boundary (block, mux, vertical spine and controller pads) and print them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			l, err := floorplan.NewLayout(cfg, floorplan.WithLogger(c.Logger))
			if err != nil {
				return err
			}

			tables := l.Pins.Tables()
			if table != "" {
				a, ok := tables[table]
				if !ok {
					return fmt.Errorf("unknown pin table %q", table)
				}
				tables = map[string]tracks.Assignment{table: a}
			}

			if output == "" {
				printLayout(l, tables)
				return nil
			}

			data, err := json.MarshalIndent(tables, "", "  ")
			if err != nil {
				return err
			}
			if output == "-" {
				_, err = fmt.Fprintln(stdout, string(data))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Wrote %d pin tables", len(tables))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the tables as JSON to this file (- for stdout)")
	cmd.Flags().StringVar(&table, "table", "", "only this table (block, mux_bot, mux_top, mux_bus, mux_port, ctrl_vspine, ctrl_io_top, ctrl_io_bot)")

	return cmd
}

func printLayout(l *floorplan.Layout, tables map[string]tracks.Assignment) {
	g := l.Globals
	printKeyValue("block", fmt.Sprintf("%d x %d", g.Block.Width.Units, g.Block.Height.Units))
	printKeyValue("mux", fmt.Sprintf("%d x %d", g.Mux.Width.Units, g.Mux.Height.Units))
	printKeyValue("controller", fmt.Sprintf("%d x %d", g.Ctrl.Width.Units, g.Ctrl.Height.Units))
	printKeyValue("top", fmt.Sprintf("%d x %d", g.Top.Width.Units, g.Top.Height.Units))

	for _, name := range slices.Sorted(maps.Keys(tables)) {
		a := tables[name]
		lo, hi, _ := a.Span()
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, StyleTitle.Render(name)+" "+StyleDim.Render(fmt.Sprintf("%d pins, %d..%d", len(a), lo, hi)))
		for _, pin := range a.Names() {
			printDetail("%-24s %s", pin, strconv.Itoa(a[pin]))
		}
	}
}
