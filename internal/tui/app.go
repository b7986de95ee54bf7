package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/averbeke/mopctl/internal/speaker"
	"github.com/averbeke/mopctl/internal/tui/components"
	"github.com/averbeke/mopctl/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelQueue Panel = iota
	PanelSources
)

// App holds the TUI application state
type App struct {
	speaker     *speaker.Speaker
	refreshRate time.Duration
}

// NewApp creates a new TUI application
func NewApp(s *speaker.Speaker, refreshRate time.Duration) *App {
	if refreshRate == 0 {
		refreshRate = time.Second
	}
	return &App{
		speaker:     s,
		refreshRate: refreshRate,
	}
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run(ctx context.Context) error {
	// Push events shorten the effective latency between polls.
	_ = a.speaker.Connect(ctx)
	defer a.speaker.Close()

	p := tea.NewProgram(NewModel(a), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	// State
	status      speaker.Status
	entries     []speaker.Entry
	currentTLID int
	sources     []string

	// Components
	nowPlaying  *components.NowPlaying
	queueView   *components.Queue
	sourcesView *components.Sources

	// Queue filter
	searchInput textinput.Model
	searching   bool
	filter      string

	// Overlays
	showHelp bool

	// Error handling
	lastError   error
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "filter queue"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	return Model{
		app:         app,
		nowPlaying:  components.NewNowPlaying(),
		queueView:   components.NewQueue(),
		sourcesView: components.NewSources(),
		currentTLID: -1,
		searchInput: ti,
	}
}

// visibleEntries applies the active queue filter.
func (m Model) visibleEntries() []speaker.Entry {
	if m.filter == "" {
		return m.entries
	}
	needle := strings.ToLower(m.filter)
	out := make([]speaker.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		haystack := strings.ToLower(e.DisplayTitle() + " " + e.Artist + " " + e.AlbumName)
		if strings.Contains(haystack, needle) {
			out = append(out, e)
		}
	}
	return out
}

// Messages
type tickMsg time.Time
type refreshedMsg struct {
	status      speaker.Status
	entries     []speaker.Entry
	currentTLID int
	sources     []string
}
type errMsg error
type actionDoneMsg struct{}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refresh() tea.Cmd {
	s := m.app.speaker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.Refresh(ctx)

		msg := refreshedMsg{
			status:      s.Status(),
			entries:     s.Queue().Entries(),
			currentTLID: -1,
			sources:     s.Sources(),
		}
		if cur, ok := s.Queue().Current(); ok {
			msg.currentTLID = cur.TLID
		}
		return msg
	}
}

func (m Model) do(action func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := action(ctx); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg{}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.refresh())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.tick(), m.refresh())

	case refreshedMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.status = msg.status
		m.entries = msg.entries
		m.currentTLID = msg.currentTLID
		m.sources = msg.sources
		m.queueView.Clamp(len(m.visibleEntries()))
		m.sourcesView.Clamp(len(m.sources))
		return m, nil

	case actionDoneMsg:
		return m, m.refresh()

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.app.speaker

	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.filter = ""
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.queueView.Clamp(len(m.entries))
			return m, nil
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.filter = m.searchInput.Value()
			m.queueView.Clamp(len(m.visibleEntries()))
			return m, cmd
		}
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "tab":
		if m.focusedPanel == PanelQueue {
			m.focusedPanel = PanelSources
		} else {
			m.focusedPanel = PanelQueue
		}
		return m, nil

	case "/":
		m.focusedPanel = PanelQueue
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case "esc":
		m.filter = ""
		m.searchInput.SetValue("")
		m.queueView.Clamp(len(m.entries))
		return m, nil

	case "up", "k":
		if m.focusedPanel == PanelQueue {
			m.queueView.MoveUp()
		} else {
			m.sourcesView.MoveUp()
		}
		return m, nil

	case "down", "j":
		if m.focusedPanel == PanelQueue {
			m.queueView.MoveDown(len(m.visibleEntries()))
		} else {
			m.sourcesView.MoveDown(len(m.sources))
		}
		return m, nil

	case "enter":
		if m.focusedPanel == PanelQueue {
			entries := m.visibleEntries()
			idx := m.queueView.Selected()
			if idx < len(entries) {
				tlid := entries[idx].TLID
				return m, m.do(func(ctx context.Context) error {
					return s.PlayEntry(ctx, tlid)
				})
			}
		} else {
			idx := m.sourcesView.Selected()
			if idx < len(m.sources) {
				name := m.sources[idx]
				return m, m.do(func(ctx context.Context) error {
					return s.SelectSource(ctx, name)
				})
			}
		}
		return m, nil

	case " ":
		if m.status.State == speaker.StatePlaying {
			return m, m.do(s.Pause)
		}
		return m, m.do(s.Play)

	case "n":
		return m, m.do(s.NextTrack)

	case "p":
		return m, m.do(s.PreviousTrack)

	case "+", "=":
		return m, m.do(s.VolumeUp)

	case "-":
		return m, m.do(s.VolumeDown)

	case "m":
		muted := m.status.Muted
		return m, m.do(func(ctx context.Context) error {
			return s.SetMute(ctx, !muted)
		})

	case "s":
		shuffle := m.status.Shuffle
		return m, m.do(func(ctx context.Context) error {
			return s.SetShuffle(ctx, !shuffle)
		})

	case "r":
		mode, _ := speaker.ParseRepeatMode(m.status.RepeatMode)
		next := speaker.RepeatOff
		switch mode {
		case speaker.RepeatOff:
			next = speaker.RepeatAll
		case speaker.RepeatAll:
			next = speaker.RepeatOne
		}
		return m, m.do(func(ctx context.Context) error {
			return s.SetRepeatMode(ctx, next)
		})

	case "c":
		consume := m.status.Consume
		return m, m.do(func(ctx context.Context) error {
			return s.SetConsumeMode(ctx, !consume)
		})

	case "x":
		return m, m.do(s.ClearQueue)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.helpView()
	}

	nowHeight := 11
	bottomHeight := m.height - nowHeight - 3
	if bottomHeight < 5 {
		bottomHeight = 5
	}

	queueWidth := m.width * 2 / 3
	sourcesWidth := m.width - queueWidth - 2

	now := m.nowPlaying.Render(m.status, m.width-2, nowHeight, false)
	queue := m.queueView.Render(m.visibleEntries(), m.currentTLID,
		queueWidth, bottomHeight, m.focusedPanel == PanelQueue)
	sources := m.sourcesView.Render(m.sources,
		sourcesWidth, bottomHeight, m.focusedPanel == PanelSources)

	bottom := lipgloss.JoinHorizontal(lipgloss.Top, queue, sources)

	footer := styles.Dim.Render(" space play/pause · n/p skip · +/- volume · / filter · tab focus · ? help · q quit")
	switch {
	case m.searching:
		footer = " " + m.searchInput.View()
	case m.lastError != nil:
		footer = styles.Offline.Render(fmt.Sprintf(" error: %v", m.lastError))
	case m.filter != "":
		footer = styles.Dim.Render(fmt.Sprintf(" filter: %q (esc to clear)", m.filter))
	}

	return lipgloss.JoinVertical(lipgloss.Left, now, bottom, footer)
}

func (m Model) helpView() string {
	help := `
  Keys

    space      play / pause
    n / p      next / previous track
    + / -      volume up / down
    m          toggle mute
    s          toggle shuffle
    r          cycle repeat mode (off → all → one)
    c          toggle consume mode
    x          clear the queue

    tab        switch panel
    ↑/k ↓/j    move selection
    enter      play selection / select source
    /          filter the queue (esc clears)

    ?          close help
    q          quit
`
	return styles.Panel(false).
		Width(m.width - 2).
		Render(help)
}
