package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/averbeke/mopctl/internal/speaker"
	"github.com/averbeke/mopctl/internal/tui/styles"
)

// NowPlaying displays the currently playing track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(st speaker.Status, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	switch {
	case !st.Available:
		content = styles.Offline.Render("Server unreachable")
	case st.Track == nil:
		content = styles.Muted.Render("No track playing")
	default:
		content = n.renderTrack(st, width-4)
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

func (n *NowPlaying) renderTrack(st speaker.Status, width int) string {
	track := st.Track

	icon := styles.StatusIcon(st.State == speaker.StatePlaying)
	titleStyle := styles.Title.Width(width - 4)
	title := titleStyle.Render(track.Title)

	artist := styles.Subtitle.Render(track.Artist)
	album := styles.Dim.Render(track.Album)

	// Progress line; streams have no duration
	progress := ""
	if st.Position != nil && track.Duration > 0 {
		progressWidth := width - 14
		if progressWidth < 10 {
			progressWidth = 10
		}
		percent := float64(*st.Position) / float64(track.Duration) * 100
		bar := styles.ProgressBar(percent, progressWidth)
		progress = fmt.Sprintf("%s %s %s",
			formatSeconds(*st.Position), bar, formatSeconds(track.Duration))
	} else if track.IsStream {
		progress = styles.Dim.Render("· streaming ·")
	}

	mixer := fmt.Sprintf("🔊 %d%%", st.Volume)
	if st.Muted {
		mixer = "🔇 muted"
	}
	options := fmt.Sprintf("shuffle %s  repeat %s  consume %s",
		onOff(st.Shuffle), st.RepeatMode, onOff(st.Consume))

	lines := []string{
		icon + " " + title,
		"  " + artist,
		"  " + album,
	}
	if track.Playlist != "" {
		lines = append(lines, "  "+styles.Dim.Render("from "+track.Playlist))
	}
	lines = append(lines, "", progress, "", styles.Muted.Render(mixer+"  "+options))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
