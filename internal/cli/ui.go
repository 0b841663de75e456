package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/htfab/tt-multiplexer/pkg/placer"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")  // Teal - primary actions
	colorGreen = lipgloss.Color("35")  // Green - success
	colorWhite = lipgloss.Color("255") // Bright white - values
	colorGray  = lipgloss.Color("245") // Gray - secondary text
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
)

// moduleColors cycle over placed modules on the grid map.
var moduleColors = []lipgloss.Color{"36", "35", "75", "220", "170", "209", "114", "141"}

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleFreeCell = lipgloss.NewStyle().Foreground(colorDim)
	styleCursor   = lipgloss.NewStyle().Reverse(true)
)

const (
	iconSuccess = "✓"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// stdout is where status output goes; tests replace it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed detail line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints run statistics on a single line.
func printStats(parts []string, cached bool) {
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	line := "  "
	for i, part := range append(parts, statusStyle.Render(status)) {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Fprintln(stdout, line)
}

// =============================================================================
// Grid Map
// =============================================================================

// gridMap draws p as a character map, top row first. Each placed module is
// drawn with the first letter of its name in its own color, free cells as
// dots, and the two grid halves are separated by a gap. When cursor is a
// grid cell it is highlighted.
func gridMap(p *placer.Placement, cursor placer.Cell) string {
	g := p.Grid()
	colors := make(map[string]lipgloss.Style)
	for i, pm := range p.Placed() {
		colors[pm.Module.Name] = lipgloss.NewStyle().Foreground(moduleColors[i%len(moduleColors)])
	}

	var b strings.Builder
	for y := g.Height - 1; y >= 0; y-- {
		b.WriteString(StyleDim.Render(fmt.Sprintf("%3d ", y)))
		for x := range g.Width {
			c := placer.Cell{X: x, Y: y}
			if x >= g.HalfWidth() {
				c.X = x - g.HalfWidth() + g.HalfOffset
			}
			if x == g.HalfWidth() {
				b.WriteString(" ")
			}

			cell := styleFreeCell.Render(".")
			if owner, ok := p.Owner(c); ok {
				cell = colors[owner.Module.Name].Render(cellRune(owner.Module.Name))
			}
			if c == cursor {
				cell = styleCursor.Render(cell)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cellRune(name string) string {
	for _, r := range name {
		return string(r)
	}
	return "#"
}

// moduleTable renders the placed modules sorted by anchor.
func moduleTable(p *placer.Placement) string {
	placed := p.Placed()
	slices.SortFunc(placed, func(a, b placer.Placed) int {
		if a.Anchor.Y != b.Anchor.Y {
			return a.Anchor.Y - b.Anchor.Y
		}
		return a.Anchor.X - b.Anchor.X
	})

	rows := make([][]string, len(placed))
	for i, pm := range placed {
		rows[i] = []string{
			pm.Module.Name,
			strconv.Itoa(pm.Module.Width) + "x" + strconv.Itoa(pm.Module.Height),
			strconv.Itoa(pm.Anchor.X),
			strconv.Itoa(pm.Anchor.Y),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Module", "Size", "X", "Y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
