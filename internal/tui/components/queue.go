package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/averbeke/mopctl/internal/speaker"
	"github.com/averbeke/mopctl/internal/tui/styles"
)

// Queue displays the play queue
type Queue struct {
	offset   int
	selected int
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// MoveDown moves the selection down
func (q *Queue) MoveDown(total int) {
	if q.selected < total-1 {
		q.selected++
	}
}

// MoveUp moves the selection up
func (q *Queue) MoveUp() {
	if q.selected > 0 {
		q.selected--
	}
}

// Selected returns the selected index
func (q *Queue) Selected() int {
	return q.selected
}

// Clamp keeps the selection inside the queue after it shrank
func (q *Queue) Clamp(total int) {
	if q.selected >= total {
		q.selected = total - 1
	}
	if q.selected < 0 {
		q.selected = 0
	}
}

// Render renders the queue panel
func (q *Queue) Render(entries []speaker.Entry, currentTLID int, width, height int, focused bool) string {
	title := styles.PanelTitle("Queue", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("Queue is empty")
	} else {
		content = q.renderEntries(entries, currentTLID, width-4, height-4, focused)
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

func (q *Queue) renderEntries(entries []speaker.Entry, currentTLID int, width, maxLines int, focused bool) string {
	visibleCount := maxLines - 1 // Leave room for "more" indicator
	if visibleCount < 1 {
		visibleCount = 1
	}

	// Keep the selection visible
	if q.selected < q.offset {
		q.offset = q.selected
	}
	if q.selected >= q.offset+visibleCount {
		q.offset = q.selected - visibleCount + 1
	}
	if q.offset >= len(entries) {
		q.offset = 0
	}

	start := q.offset
	end := start + visibleCount
	if end > len(entries) {
		end = len(entries)
	}

	lines := make([]string, 0, end-start+1)

	// Fixed overhead: "XX. " + marker + separator
	const overhead = 9

	for i := start; i < end; i++ {
		e := entries[i]
		num := fmt.Sprintf("%2d.", i+1)

		available := width - overhead
		title, artist := fitTitleArtist(e.DisplayTitle(), e.Artist, available)

		marker := "  "
		if e.TLID == currentTLID {
			marker = "▶ "
		}
		cursor := "  "
		if focused && i == q.selected {
			cursor = "> "
		}

		var line string
		switch {
		case e.TLID == currentTLID:
			line = styles.Playing.Render(fmt.Sprintf("%s%s %s%s — %s", cursor, num, marker, title, artist))
		case focused && i == q.selected:
			line = styles.Highlight.Render(fmt.Sprintf("%s%s %s%s — %s", cursor, num, marker, title, artist))
		default:
			line = fmt.Sprintf("%s%s %s%s — %s",
				cursor, styles.Dim.Render(num), marker, title, styles.Muted.Render(artist))
		}
		lines = append(lines, line)
	}

	if end < len(entries) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(entries)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fitTitleArtist truncates title and artist to fit the available width,
// giving the artist at least a third of the space.
func fitTitleArtist(title, artist string, available int) (string, string) {
	if len(title)+len(artist) <= available {
		return title, artist
	}

	minArtist := available / 3
	if minArtist < 10 {
		minArtist = 10
	}
	if minArtist > available-10 {
		minArtist = available - 10
	}

	artistSpace := minArtist
	if len(artist) < artistSpace {
		artistSpace = len(artist)
	}
	return truncate(title, available-artistSpace), truncate(artist, artistSpace)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
