package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rail44/roster/internal/gateway"
	"github.com/rail44/roster/internal/row"
	"github.com/rail44/roster/internal/store"
)

// Gateway is the subset of the remote client the browser needs.
type Gateway interface {
	List(ctx context.Context) ([]row.Row, error)
	Get(ctx context.Context, id string) (row.Row, error)
	Create(ctx context.Context, r row.Row) (row.Row, error)
	UpdateFields(ctx context.Context, id string, fields row.Row) (row.Row, error)
	Delete(ctx context.Context, id string) error
}

// Message types
type listedMsg struct {
	rows  []row.Row
	since store.Revision
	err   error
}

type createdMsg struct {
	row row.Row
	err error
}

type updatedMsg struct {
	id  string
	nth int
	row row.Row
	err error
}

type deletedMsg struct {
	id  string
	nth int
	err error
}

type fetchedMsg struct {
	id  string
	row row.Row
	err error
}

type failureMsg struct {
	err *gateway.RequestFailed
}

type logMsg struct {
	entry LogEntry
}

// LogEntry represents a single log message
type LogEntry struct {
	Level     string
	Message   string
	Timestamp time.Time
}

func listCmd(ctx context.Context, gw Gateway, since store.Revision) tea.Cmd {
	return func() tea.Msg {
		rows, err := gw.List(ctx)
		return listedMsg{rows: rows, since: since, err: err}
	}
}

func createCmd(ctx context.Context, gw Gateway, payload row.Row) tea.Cmd {
	return func() tea.Msg {
		r, err := gw.Create(ctx, payload)
		return createdMsg{row: r, err: err}
	}
}

func updateCmd(ctx context.Context, gw Gateway, id string, nth int, fields row.Row) tea.Cmd {
	return func() tea.Msg {
		r, err := gw.UpdateFields(ctx, id, fields)
		return updatedMsg{id: id, nth: nth, row: r, err: err}
	}
}

func deleteCmd(ctx context.Context, gw Gateway, id string, nth int) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, nth: nth, err: gw.Delete(ctx, id)}
	}
}

func getCmd(ctx context.Context, gw Gateway, id string) tea.Cmd {
	return func() tea.Msg {
		r, err := gw.Get(ctx, id)
		return fetchedMsg{id: id, row: r, err: err}
	}
}

// waitForFailure blocks on the error channel and re-arms after each event.
func waitForFailure(ch <-chan *gateway.RequestFailed) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return failureMsg{err: err}
	}
}
