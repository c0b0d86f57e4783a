package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/boxoffice/internal/boxoffice"
	"github.com/mmcdole/boxoffice/internal/domain"
	"github.com/mmcdole/boxoffice/internal/notify"
)

const refreshTimeout = 2 * time.Minute

// EventMsg relays a bus event into the program
type EventMsg struct {
	Event domain.Event
}

// RefreshDoneMsg signals that a user-requested refresh finished
type RefreshDoneMsg struct {
	Err error
}

// LaunchDoneMsg reports the outcome of opening something outside the terminal
type LaunchDoneMsg struct {
	Status string
	Err    error
}

// WaitForEvent blocks until the next bus event. The subscription closing
// ends the loop.
func WaitForEvent(sub *notify.Subscription) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-sub.C
		if !ok {
			return nil
		}
		return EventMsg{Event: e}
	}
}

// RefreshCmd forces a new fetch of the current search
func RefreshCmd(box *boxoffice.Model) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return RefreshDoneMsg{Err: box.Refresh(ctx)}
	}
}

// UpdateCmd asks the model to bring the listings up to date in the background
func UpdateCmd(box *boxoffice.Model) tea.Cmd {
	return func() tea.Msg {
		box.Update()
		return nil
	}
}

// LaunchCmd runs fn off the update loop
func LaunchCmd(fn func() error, status string) tea.Cmd {
	return func() tea.Msg {
		return LaunchDoneMsg{Status: status, Err: fn()}
	}
}
