package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benmeehan/geotrack/internal/mapview"
	"github.com/benmeehan/geotrack/internal/models"
	"github.com/benmeehan/geotrack/internal/tracker"
	"github.com/benmeehan/geotrack/pkg/location"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

const (
	actionTimeout  = 5 * time.Second
	rowTimeLayout  = "2006-01-02 15:04:05"
	noMarkerLegend = "No location selected"
)

// Actions is the subset of the tracker controller driven by the keyboard.
type Actions interface {
	StartAutomatic(ctx context.Context) error
	StartManual(ctx context.Context) error
	Stop(ctx context.Context) error
	Select(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SnapshotFunc returns the current map state for rendering.
type SnapshotFunc func() mapview.Snapshot

// Model is the bubbletea model of the tracker page.
type Model struct {
	actions  Actions
	snapshot SnapshotFunc
	bridge   *Bridge

	status       tracker.Status
	notification *tracker.Notification
	history      []models.LocationSample
	cursor       int
	quitting     bool
}

type actionErrMsg struct{ err error }

// NewModel creates the tracker page model seeded with the loaded history.
func NewModel(actions Actions, snapshot SnapshotFunc, bridge *Bridge, history []models.LocationSample) Model {
	return Model{
		actions:  actions,
		snapshot: snapshot,
		bridge:   bridge,
		history:  history,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForStatusUpdates(m.bridge.statusChan),
		waitForNotifications(m.bridge.notificationChan),
		waitForHistoryUpdates(m.bridge.historyChan),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "a":
			return m, m.run(m.actions.StartAutomatic)

		case "m":
			return m, m.run(m.actions.StartManual)

		case "s":
			return m, m.run(m.actions.Stop)

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.history)-1 {
				m.cursor++
			}

		case "enter":
			if id, ok := m.selectedID(); ok {
				return m, m.run(func(ctx context.Context) error { return m.actions.Select(ctx, id) })
			}

		case "d":
			if id, ok := m.selectedID(); ok {
				return m, m.run(func(ctx context.Context) error { return m.actions.Delete(ctx, id) })
			}
		}

	case statusUpdateMsg:
		m.status = tracker.Status(msg)
		return m, waitForStatusUpdates(m.bridge.statusChan)

	case notificationMsg:
		n := tracker.Notification(msg)
		m.notification = &n
		return m, waitForNotifications(m.bridge.notificationChan)

	case historyUpdateMsg:
		m.history = msg
		if m.cursor >= len(m.history) {
			m.cursor = max(len(m.history)-1, 0)
		}
		return m, waitForHistoryUpdates(m.bridge.historyChan)

	case actionErrMsg:
		m.notification = &tracker.Notification{
			Level:   tracker.LevelError,
			Message: msg.err.Error(),
			Time:    time.Now(),
		}
	}

	return m, nil
}

func (m Model) selectedID() (uuid.UUID, bool) {
	if m.cursor < 0 || m.cursor >= len(m.history) {
		return uuid.Nil, false
	}
	return m.history[m.cursor].ID, true
}

// run executes an action off the update loop. Failures the controller already
// reported as notifications are not repeated.
func (m Model) run(action func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		err := action(ctx)
		var locErr *location.Error
		if err == nil || errors.As(err, &locErr) || errors.Is(err, tracker.ErrAlreadyPolling) {
			return nil
		}
		return actionErrMsg{err}
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AFFF")).
			Padding(1, 0)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(1, 0)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00AFFF")).
			Padding(0, 1)
)

func (m Model) View() string {
	if m.quitting {
		return "Stopping tracker...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Geolocation Tracker"))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.renderStatus()))
	b.WriteString("\n")

	if m.notification != nil {
		style := infoStyle
		if m.notification.Level == tracker.LevelError {
			style = errorStyle
		}
		b.WriteString(style.Render(m.notification.Message))
		b.WriteString("\n")
	}

	b.WriteString(boxStyle.Render(m.renderMap()))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.renderHistory()))
	b.WriteString("\n")

	controls := `Controls:
  A       - Start Automatic Tracking
  M       - Start Manual Tracking
  S       - Stop Tracking
  ↑/↓     - Select Location
  ENTER   - Show on Map
  D       - Delete
  Q       - Quit`
	b.WriteString(helpStyle.Render(controls))
	return b.String()
}

func (m Model) renderStatus() string {
	mode := "Idle"
	if m.status.State == tracker.AutomaticPolling {
		mode = "Automatic tracking"
	}
	text := m.status.Text
	if text == "" {
		text = "No location yet"
	}
	line := fmt.Sprintf("%s | %s", mode, text)
	if m.status.InFlight > 0 {
		line += fmt.Sprintf(" | %d request(s) pending", m.status.InFlight)
	}
	return line
}

func (m Model) renderMap() string {
	if m.snapshot == nil {
		return noMarkerLegend
	}
	snap := m.snapshot()

	lines := []string{
		fmt.Sprintf("Map center %s, %s zoom %d",
			models.FormatCoordinate(snap.Center.Lat), models.FormatCoordinate(snap.Center.Lng), snap.Zoom),
		fmt.Sprintf("Tile %s", snap.TileURL),
	}
	if len(snap.Markers) == 0 {
		lines = append(lines, noMarkerLegend)
	}
	for _, p := range snap.Markers {
		lines = append(lines, fmt.Sprintf("Marker at %s, %s",
			models.FormatCoordinate(p.Lat), models.FormatCoordinate(p.Lng)))
	}
	lines = append(lines, snap.Attribution)
	return strings.Join(lines, "\n")
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "Location History: empty"
	}

	rows := make([]string, 0, len(m.history)+1)
	rows = append(rows, "Location History:")
	for i, sample := range m.history {
		row := FormatEntry(i, sample)
		if i == m.cursor {
			row = selectedStyle.Render("> " + row)
		} else {
			row = "  " + row
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

// FormatEntry renders one history row with a 1-based index and local time.
func FormatEntry(index int, sample models.LocationSample) string {
	return fmt.Sprintf("Location %d: Latitude: %s, Longitude: %s, Time: %s",
		index+1,
		models.FormatCoordinate(sample.Latitude),
		models.FormatCoordinate(sample.Longitude),
		sample.Timestamp.Local().Format(rowTimeLayout))
}
