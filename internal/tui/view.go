package tui

import (
	"fmt"
	"strings"

	"treeorder/internal/explorer"
	"treeorder/internal/order"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🗂  " + m.title))
	b.WriteString("\n")
	b.WriteString(m.renderTree())
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderTree renders exactly Height lines so mouse rows line up with tree
// rows.
func (m *Model) renderTree() string {
	var b strings.Builder
	rows := m.explorer.Rows()
	height := m.explorer.Height

	if len(rows) == 0 {
		b.WriteString(StatusStyle.Italic(true).Render("✨ Empty folder ✨"))
		b.WriteString("\n")
		height--
	}

	start := m.explorer.Offset
	for i := 0; i < height; i++ {
		idx := start + i
		if idx >= len(rows) {
			b.WriteString("\n")
			continue
		}
		b.WriteString(m.renderRow(rows, idx))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderRow(rows []*explorer.Node, i int) string {
	node := rows[i]

	indent := ""
	if node.Level > 1 {
		indent = strings.Repeat("  ", node.Level-2)
		if isLastChild(rows, i) {
			indent += "└─ "
		} else {
			indent += "├─ "
		}
	}

	icon := "📝 "
	if node.IsFolder {
		icon = "📁 "
		if node.Open {
			icon = "📂 "
		}
	}

	name := node.Name
	style := FileStyle
	if node.IsFolder {
		style = FolderStyle
	}

	switch {
	case i == m.explorer.Cursor:
		style = CursorStyle
	case node.ID == m.visual.Dragging:
		style = DraggingStyle
	}

	line := indent + icon + style.Render(name)
	if node.ID == m.visual.Target {
		marker := "▼ drop after"
		if m.visual.Side == order.Before {
			marker = "▲ drop before"
		}
		line += " " + DropStyle.Render(marker)
	}
	if m.width > 0 && lipgloss.Width(line) > m.width {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

func isLastChild(rows []*explorer.Node, i int) bool {
	parent := rows[i].Parent
	for j := i + 1; j < len(rows); j++ {
		if rows[j].Parent == parent {
			return false
		}
		if rows[j].Level < rows[i].Level {
			return true
		}
	}
	return true
}

func (m *Model) renderStatus() string {
	s := m.engine.Settings()

	mode := "custom order " + onOff(s.Enabled)
	if s.Enabled && s.FoldersFirst {
		mode += " · folders first"
	}
	mode += " · new items " + string(s.NewItemPosition)

	if rows := len(m.explorer.Rows()); rows > m.explorer.Height {
		mode += fmt.Sprintf(" · %d/%d", m.explorer.Cursor+1, rows)
	}

	line := StatusStyle.Render(mode)
	if m.status != "" {
		st := SuccessStyle
		if m.failed {
			st = ErrorStyle
		}
		line += "  " + st.Render(m.status)
	}
	return line
}
