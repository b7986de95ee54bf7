package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/averbeke/mopctl/internal/tui/styles"
)

// Sources displays the selectable sources
type Sources struct {
	selected int
}

// NewSources creates a new Sources component
func NewSources() *Sources {
	return &Sources{}
}

// MoveDown moves the selection down
func (s *Sources) MoveDown(total int) {
	if s.selected < total-1 {
		s.selected++
	}
}

// MoveUp moves the selection up
func (s *Sources) MoveUp() {
	if s.selected > 0 {
		s.selected--
	}
}

// Selected returns the selected index
func (s *Sources) Selected() int {
	return s.selected
}

// Clamp keeps the selection inside the list after it shrank
func (s *Sources) Clamp(total int) {
	if s.selected >= total {
		s.selected = total - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

// Render renders the sources panel
func (s *Sources) Render(sources []string, width, height int, focused bool) string {
	title := styles.PanelTitle("Sources", focused)

	var content string
	if len(sources) == 0 {
		content = styles.Muted.Render("No sources")
	} else {
		lines := make([]string, 0, len(sources))
		maxLines := height - 4
		for i, name := range sources {
			if i >= maxLines {
				lines = append(lines, styles.Dim.Render(fmt.Sprintf("  ... and %d more", len(sources)-i)))
				break
			}
			if focused && i == s.selected {
				lines = append(lines, styles.Highlight.Render("> "+truncate(name, width-6)))
			} else {
				lines = append(lines, "  "+truncate(name, width-6))
			}
		}
		content = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}
