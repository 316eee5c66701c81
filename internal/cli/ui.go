package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/classgraph/pkg/build"
	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/validate"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(14)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// printer - Styled Output
// =============================================================================

// printer writes styled status lines to a command's output stream.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer {
	return printer{w: w}
}

func (p printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p printer) success(format string, args ...any) {
	p.line(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func (p printer) error(format string, args ...any) {
	p.line(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	p.line(styleWarning.Render(iconWarning) + " " + styleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line.
func (p printer) detail(format string, args ...any) {
	p.line("  " + styleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints an output file line.
func (p printer) file(path string) {
	p.line("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

func (p printer) keyValue(key, value string) {
	p.line(styleKey.Render(key) + " " + styleValue.Render(value))
}

func (p printer) title(s string) {
	p.line(styleTitle.Render(s))
}

func (p printer) nextStep(description, cmd string) {
	p.line(styleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func (p printer) newline() {
	fmt.Fprintln(p.w)
}

// stats prints graph size and cache status on one line.
func (p printer) stats(nodes, edges int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", nodes),
		fmt.Sprintf("%d edges", edges),
	}
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	var b strings.Builder
	b.WriteString("  ")
	for _, part := range parts {
		b.WriteString(styleDim.Render(part))
		b.WriteString(styleDim.Render(" · "))
	}
	b.WriteString(statusStyle.Render(status))
	p.line(b.String())
}

// FormatError renders a command error for the terminal, tagged with its
// error code when it has one.
func FormatError(err error) string {
	msg := styleIconError.Render(iconError) + " " + err.Error()
	if code := errors.GetCode(err); code != "" {
		msg += " " + styleDim.Render("["+string(code)+"]")
	}
	return msg
}

// =============================================================================
// Tables
// =============================================================================

// newTable returns a bordered table in the CLI palette.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return styleTableCell
		})
}

// dependencyTable lists per-kind dependency outcomes.
func dependencyTable(s build.DependencyStats) *table.Table {
	t := newTable("Kind", "Count", "Missing", "Invalid", "Circular")
	row := func(name string, c build.Counter) {
		t.Row(name, strconv.Itoa(c.Count), strconv.Itoa(c.Missing), strconv.Itoa(c.Invalid), strconv.Itoa(c.Circular))
	}
	for _, kind := range s.Kinds() {
		c, _ := s.Kind(kind)
		row(string(kind), c)
	}
	row("total", s.Total)
	return t
}

// rankingTable lists ranked nodes with their degrees.
func rankingTable(r validate.Ranking) *table.Table {
	t := newTable("Node", "In", "Out", "Total")
	for _, n := range r {
		t.Row(n.ID, strconv.Itoa(n.In), strconv.Itoa(n.Out), strconv.Itoa(n.Total))
	}
	return t
}

// pathTable lists node paths, one per row.
func pathTable(header string, paths [][]string) *table.Table {
	t := newTable("#", "Length", header)
	for i, path := range paths {
		t.Row(strconv.Itoa(i+1), strconv.Itoa(len(path)), strings.Join(path, " "+iconArrow+" "))
	}
	return t
}

// printBuild prints build statistics.
func (p printer) printBuild(s build.Stats, cached bool) {
	p.stats(s.NodeCount, s.EdgeCount, cached)
	p.detail("built in %.3fs", s.BuildTime.Seconds())
	if s.Skipped > 0 {
		p.warning("%d declarations skipped (empty name or unknown kind)", s.Skipped)
	}
	if n := len(s.Conflicts); n > 0 {
		p.warning("%d duplicate declarations", n)
		for _, c := range s.Conflicts {
			p.detail("%s: kept %s, dropped %s", c.FQN, c.KeptFile, c.DroppedFile)
		}
	}
	p.line(dependencyTable(s.Dependencies).String())
}

// printReport prints a validation report.
func (p printer) printReport(r *validate.Report) {
	if r.IsValid {
		p.success("graph is valid")
	} else {
		p.error("graph is invalid: %d problems", r.Problems())
	}
	p.keyValue("Subgraphs", styleNumber.Render(strconv.Itoa(r.SubgraphCount)))
	p.keyValue("Largest", strconv.Itoa(r.LargestSubgraph))
	p.keyValue("Smallest", strconv.Itoa(r.SmallestSubgraph))
	p.keyValue("Orphans", strconv.Itoa(len(r.OrphanedNodes)))

	if len(r.MultipleInheritance) > 0 {
		p.newline()
		p.title("Multiple inheritance")
		t := newTable("Node", "Parents")
		for _, c := range r.MultipleInheritance {
			t.Row(c.Source, strings.Join(c.Targets, ", "))
		}
		p.line(t.String())
	}
	if len(r.CircularDependencies) > 0 {
		p.newline()
		p.title("Circular dependencies")
		p.line(pathTable("Cycle", r.CircularDependencies).String())
	}
	if len(r.LongestPaths) > 0 {
		p.newline()
		p.title("Longest paths")
		p.line(pathTable("Path", r.LongestPaths).String())
	}
	if len(r.MostConnected) > 0 {
		p.newline()
		p.title("Most connected")
		p.line(rankingTable(r.MostConnected).String())
	}
	if len(r.LeastConnected) > 0 {
		p.newline()
		p.title("Least connected")
		p.line(rankingTable(r.LeastConnected).String())
	}
	if len(r.OrphanedNodes) > 0 {
		p.newline()
		p.title("Orphans")
		for _, id := range r.OrphanedNodes {
			p.detail("%s", id)
		}
	}
}
