package tui

import (
	"github.com/benmeehan/geotrack/internal/models"
	"github.com/benmeehan/geotrack/internal/tracker"
	tea "github.com/charmbracelet/bubbletea"
)

// Bridge carries tracker callbacks into the TUI. Its methods never block, so they
// are safe to register as controller and history listeners.
type Bridge struct {
	statusChan       chan tracker.Status
	notificationChan chan tracker.Notification
	historyChan      chan []models.LocationSample
}

type statusUpdateMsg tracker.Status
type notificationMsg tracker.Notification
type historyUpdateMsg []models.LocationSample

// NewBridge creates a Bridge with buffered channels.
func NewBridge() *Bridge {
	return &Bridge{
		statusChan:       make(chan tracker.Status, 1),
		notificationChan: make(chan tracker.Notification, 16),
		historyChan:      make(chan []models.LocationSample, 1),
	}
}

// Notify implements tracker.Notifier. When the TUI falls behind the oldest pending
// notification is discarded, so the newest one is always shown.
func (b *Bridge) Notify(n tracker.Notification) {
	sendLatest(b.notificationChan, n)
}

// HandleStatus is a tracker.StatusListener.
func (b *Bridge) HandleStatus(s tracker.Status) {
	sendLatest(b.statusChan, s)
}

// HandleHistory is a history.Listener.
func (b *Bridge) HandleHistory(samples []models.LocationSample) {
	sendLatest(b.historyChan, samples)
}

// sendLatest discards the oldest unread value when ch is full so v is always delivered.
func sendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

func waitForStatusUpdates(ch chan tracker.Status) tea.Cmd {
	return func() tea.Msg {
		return statusUpdateMsg(<-ch)
	}
}

func waitForNotifications(ch chan tracker.Notification) tea.Cmd {
	return func() tea.Msg {
		return notificationMsg(<-ch)
	}
}

func waitForHistoryUpdates(ch chan []models.LocationSample) tea.Cmd {
	return func() tea.Msg {
		return historyUpdateMsg(<-ch)
	}
}
