package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/classgraph/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle       = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// Sort orders of the node browser, cycled with "s".
const (
	sortMost = iota
	sortLeast
	sortName
	sortCount
)

var sortNames = [sortCount]string{"most connected", "least connected", "name"}

// =============================================================================
// NodeBrowserModel - Interactive node browser
// =============================================================================

// nodeRow is one node with its degrees.
type nodeRow struct {
	node    *graph.Node
	in, out int
}

func (r nodeRow) total() int { return r.in + r.out }

// NodeBrowserModel is the bubbletea model of the inspect command. It lists
// every node ranked by connectivity and shows the edges of the node under
// the cursor.
type NodeBrowserModel struct {
	g       *graph.Graph
	rows    []nodeRow
	Cursor  int
	Offset  int
	Height  int
	Sort    int
	Details bool
}

// NewNodeBrowserModel creates a browser over g, most connected first.
func NewNodeBrowserModel(g *graph.Graph) NodeBrowserModel {
	nodes := g.Nodes()
	rows := make([]nodeRow, len(nodes))
	for i, n := range nodes {
		rows[i] = nodeRow{node: n, in: g.InDegree(n.ID), out: g.OutDegree(n.ID)}
	}
	m := NodeBrowserModel{g: g, rows: rows, Height: 15, Details: true}
	m.sortRows()
	return m
}

// Selected returns the node under the cursor, or nil for an empty graph.
func (m NodeBrowserModel) Selected() *graph.Node {
	if len(m.rows) == 0 {
		return nil
	}
	return m.rows[m.Cursor].node
}

func (m *NodeBrowserModel) sortRows() {
	switch m.Sort {
	case sortMost:
		slices.SortStableFunc(m.rows, func(a, b nodeRow) int { return b.total() - a.total() })
	case sortLeast:
		slices.SortStableFunc(m.rows, func(a, b nodeRow) int { return a.total() - b.total() })
	case sortName:
		slices.SortStableFunc(m.rows, func(a, b nodeRow) int { return strings.Compare(a.node.ID, b.node.ID) })
	}
}

func (m NodeBrowserModel) Init() tea.Cmd {
	return nil
}

func (m NodeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.rows))
		case "end", "G":
			m.move(len(m.rows))
		case "s":
			m.Sort = (m.Sort + 1) % sortCount
			m.sortRows()
			m.Cursor, m.Offset = 0, 0
		case "enter", "d":
			m.Details = !m.Details
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// move shifts the cursor by delta and keeps it inside the visible window.
func (m *NodeBrowserModel) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m NodeBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Nodes"))
	b.WriteString(listDimStyle.Render(" · " + sortNames[m.Sort]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  s sort  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  graph has no nodes"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.rows))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, r.node.ID, string(r.node.Kind), strconv.Itoa(r.in), strconv.Itoa(r.out), strconv.Itoa(r.total())})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "In", "Out", "Total").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	b.WriteString("\n")

	if m.Details {
		b.WriteString("\n")
		b.WriteString(m.detailView(m.rows[m.Cursor].node))
	}
	return b.String()
}

// detailView describes one node and its edges.
func (m NodeBrowserModel) detailView(n *graph.Node) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(n.ID))
	b.WriteString("\n")

	if n.Meta != nil {
		common := n.Meta.Common()
		b.WriteString(styleKey.Render("namespace") + " " + styleValue.Render(orDash(common.Namespace)) + "\n")
		b.WriteString(styleKey.Render("file") + " " + styleValue.Render(orDash(common.FilePath)) + "\n")
	}
	var flags []string
	if n.IsAbstract() {
		flags = append(flags, "abstract")
	}
	if n.IsFinal() {
		flags = append(flags, "final")
	}
	if len(flags) > 0 {
		b.WriteString(styleKey.Render("modifiers") + " " + styleValue.Render(strings.Join(flags, ", ")) + "\n")
	}

	for _, e := range m.g.OutEdges(n.ID) {
		b.WriteString("  " + listDimStyle.Render(iconArrow+" "+string(e.Kind)) + " " + e.Target + "\n")
	}
	for _, e := range m.g.InEdges(n.ID) {
		b.WriteString("  " + listDimStyle.Render("← "+string(e.Kind)) + " " + e.Source + "\n")
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
