package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/pipeline"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

var (
	inspectHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	inspectLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

// inspectCommand creates the interactive placement browser.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Browse the placement interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			p, err := runner.Place(ctx, pipeline.Options{Config: cfg, Modules: modules, Logger: c.Logger})
			if err != nil {
				return err
			}
			fp, err := floorplan.New(cfg, p, floorplan.WithLogger(c.Logger))
			if err != nil {
				return err
			}
			macros, err := fp.Macros()
			if err != nil {
				return err
			}

			_, err = tea.NewProgram(NewInspectModel(p, macros), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// InspectModel is the bubbletea model of the placement browser. The cursor
// moves over grid cells and the panel below the map describes the module
// under it.
type InspectModel struct {
	Placement *placer.Placement
	Macros    map[string]floorplan.MacroInstance // by macro name
	Col, Row  int                                // dense column and row of the cursor
}

// NewInspectModel creates a browser for p with the cursor on the top-left cell.
func NewInspectModel(p *placer.Placement, macros []floorplan.MacroInstance) InspectModel {
	byName := make(map[string]floorplan.MacroInstance, len(macros))
	for _, m := range macros {
		byName[m.ModName] = m
	}
	return InspectModel{Placement: p, Macros: byName, Row: p.Grid().Height - 1}
}

// Cursor returns the grid cell under the cursor.
func (m InspectModel) Cursor() placer.Cell {
	g := m.Placement.Grid()
	if m.Col >= g.HalfWidth() {
		return placer.Cell{X: m.Col - g.HalfWidth() + g.HalfOffset, Y: m.Row}
	}
	return placer.Cell{X: m.Col, Y: m.Row}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	g := m.Placement.Grid()
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.Col = max(m.Col-1, 0)
		case "right", "l":
			m.Col = min(m.Col+1, g.Width-1)
		case "up", "k":
			m.Row = min(m.Row+1, g.Height-1)
		case "down", "j":
			m.Row = max(m.Row-1, 0)
		}
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder
	cur := m.Cursor()

	b.WriteString(StyleTitle.Render("Placement"))
	b.WriteString("\n")
	b.WriteString(inspectHelpStyle.Render("←/→/↑/↓ move  q quit"))
	b.WriteString("\n\n")
	b.WriteString(gridMap(m.Placement, cur))
	b.WriteString("\n")

	line := func(k, v string) {
		b.WriteString(inspectLabelStyle.Render(k) + " " + StyleValue.Render(v) + "\n")
	}
	line("cell", cur.String())

	owner, ok := m.Placement.Owner(cur)
	if !ok {
		line("module", "free")
		return b.String()
	}
	mod := owner.Module
	line("module", mod.Name)
	line("size", fmt.Sprintf("%dx%d", mod.Width, mod.Height))
	line("anchor", owner.Anchor.String())
	if mi, ok := m.Macros[floorplan.UserModName(mod.Name)]; ok {
		line("instance", mi.InstName)
		line("position", fmt.Sprintf("%s %s", mi.Pos(), mi.Orient))
	}
	return b.String()
}
