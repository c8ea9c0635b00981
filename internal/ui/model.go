package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rail44/roster/internal/gateway"
	"github.com/rail44/roster/internal/row"
	"github.com/rail44/roster/internal/schema"
	"github.com/rail44/roster/internal/store"
	"github.com/rail44/roster/internal/table"
)

// Placeholder ids used when nothing is selected.
const (
	defaultDeleteID = "2"
	defaultUserID   = "1"
)

const maxLogLines = 3

// styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Options wires the browser to its collaborators.
type Options struct {
	Schema        *schema.Schema
	Gateway       Gateway
	Store         *store.Collection
	Failures      <-chan *gateway.RequestFailed
	CreatePayload row.Row
	ModifyName    string
	MaxCellWidth  int
	Endpoint      string
}

// Model is the Bubble Tea model for the user browser
type Model struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	grid     *table.Grid
	selected int
	offset   int
	width    int
	height   int

	pending int
	status  string
	lastErr error
	detail  row.Row
	logs    []LogEntry
}

// NewModel creates a browser model. Canceling parent, or quitting, stops
// every in-flight request.
func NewModel(parent context.Context, opts Options) Model {
	if opts.Store == nil {
		opts.Store = store.New()
	}
	if opts.ModifyName == "" {
		opts.ModifyName = gateway.DefaultModifyName
	}
	if opts.CreatePayload == nil {
		opts.CreatePayload = gateway.DefaultNewUser()
	}
	ctx, cancel := context.WithCancel(parent)
	m := Model{
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
	m.rebuild()
	return m
}

// Init issues the initial list and starts listening for failures
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listCmd(m.ctx, m.opts.Gateway, m.opts.Store.Begin()),
		waitForFailure(m.opts.Failures),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case failureMsg:
		m.lastErr = msg.err
		return m, waitForFailure(m.opts.Failures)

	case logMsg:
		m.logs = append(m.logs, msg.entry)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		return m, nil
	}

	// Results for a torn-down view are dropped
	if m.ctx.Err() != nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case listedMsg:
		m.pending--
		if msg.err != nil {
			return m, nil
		}
		if _, ok := m.opts.Store.ReplaceAll(msg.rows, msg.since); ok {
			m.status = fmt.Sprintf("Loaded %d users", len(msg.rows))
		}
		m.rebuild()

	case createdMsg:
		m.pending--
		if msg.err != nil {
			return m, nil
		}
		m.opts.Store.Append(msg.row)
		id, _ := msg.row.ID()
		m.status = "Created user " + id
		m.rebuild()
		m.selected = len(m.grid.Body) - 1

	case updatedMsg:
		m.pending--
		if msg.err != nil {
			return m, nil
		}
		patch := msg.row.Clone()
		delete(patch, "id")
		m.opts.Store.PatchAt(msg.id, msg.nth, patch)
		m.status = "Modified user " + msg.id
		m.rebuild()

	case deletedMsg:
		m.pending--
		if msg.err != nil {
			return m, nil
		}
		m.opts.Store.RemoveAt(msg.id, msg.nth)
		m.status = "Deleted user " + msg.id
		m.rebuild()

	case fetchedMsg:
		m.pending--
		if msg.err != nil {
			return m, nil
		}
		m.detail = msg.row
		m.status = "Retrieved user " + msg.id
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.grid.Body)-1 {
			m.selected++
		}
	case "left", "h":
		if m.offset > 0 {
			m.offset--
		}
	case "right", "l":
		if m.offset < m.grid.Leaves()-1 {
			m.offset++
		}
	case "esc":
		m.detail = nil
	case "r":
		return m.start(listCmd(m.ctx, m.opts.Gateway, m.opts.Store.Begin()), "Loading users...")
	case "a":
		return m.start(createCmd(m.ctx, m.opts.Gateway, m.opts.CreatePayload.Clone()), "Adding user...")
	case "d":
		id, nth := m.selectedTarget(defaultDeleteID)
		return m.start(deleteCmd(m.ctx, m.opts.Gateway, id, nth), "Deleting user "+id+"...")
	case "m":
		id, nth := m.selectedTarget(defaultUserID)
		fields := row.Row{"name": m.opts.ModifyName}
		return m.start(updateCmd(m.ctx, m.opts.Gateway, id, nth, fields), "Modifying user "+id+"...")
	case "g":
		id, _ := m.selectedTarget(defaultUserID)
		return m.start(getCmd(m.ctx, m.opts.Gateway, id), "Fetching user "+id+"...")
	}
	return m, nil
}

func (m Model) start(cmd tea.Cmd, status string) (tea.Model, tea.Cmd) {
	m.pending++
	m.lastErr = nil
	m.status = status
	return m, cmd
}

// selectedTarget returns the id of the highlighted row and which occurrence
// of that id it is, so duplicates (the public mock answers every create with
// id 11) are told apart. It falls back to the first row with fallback when
// the table is empty or the row has no id.
func (m Model) selectedTarget(fallback string) (string, int) {
	if m.selected < 0 || m.selected >= len(m.grid.Body) {
		return fallback, 0
	}
	id, ok := m.grid.Body[m.selected].Row.ID()
	if !ok {
		return fallback, 0
	}
	nth := 0
	for _, br := range m.grid.Body[:m.selected] {
		if other, ok := br.Row.ID(); ok && other == id {
			nth++
		}
	}
	return id, nth
}

// rebuild regenerates the grid and keeps the selection on the same row key
func (m *Model) rebuild() {
	var key string
	if m.grid != nil && m.selected >= 0 && m.selected < len(m.grid.Body) {
		key = m.grid.Body[m.selected].Key
	}

	m.grid = table.Build(m.opts.Schema, m.opts.Store.Rows())

	if key != "" {
		if i := m.grid.Find(key); i >= 0 {
			m.selected = i
		}
	}
	if m.selected >= len(m.grid.Body) {
		m.selected = len(m.grid.Body) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// View renders the UI
func (m Model) View() string {
	var s strings.Builder

	title := "Users"
	if m.opts.Endpoint != "" {
		title += " @ " + m.opts.Endpoint
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	renderer := table.NewRenderer(table.RenderOptions{
		Selected:     m.selected,
		MaxCellWidth: m.opts.MaxCellWidth,
		Offset:       m.offset,
		Width:        m.width,
	})
	s.WriteString(m.window(renderer.Render(m.grid)))
	s.WriteString("\n")
	if len(m.grid.Body) == 0 {
		s.WriteString(dimStyle.Render("(no users)"))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	if m.detail != nil {
		s.WriteString(detailStyle.Render(truncate(row.FormatValue(map[string]any(m.detail)), m.width)))
		s.WriteString("\n")
	}

	switch {
	case m.lastErr != nil:
		s.WriteString(errorStyle.Render("✗ " + m.lastErr.Error()))
	case m.pending > 0:
		s.WriteString(statusStyle.Render(m.status))
	case m.status != "":
		s.WriteString(statusStyle.Render("✓ " + m.status))
	}
	s.WriteString("\n")

	for _, entry := range m.logs {
		line := fmt.Sprintf("[%s] %-5s: %s", entry.Timestamp.Format("15:04:05"), entry.Level, entry.Message)
		s.WriteString(dimStyle.Render(truncate(line, m.width)))
		s.WriteString("\n")
	}

	s.WriteString(dimStyle.Render("a add · d delete · m modify · g get · r reload · ←/→ scroll · q quit"))
	return s.String()
}

// window keeps the header and a slice of body lines around the selection
// when the terminal is too short for the whole table.
func (m Model) window(rendered string) string {
	lines := strings.Split(rendered, "\n")
	head := len(m.grid.Headers) + 1
	// title, blank, trailing blank, status, help, detail and logs
	avail := m.height - head - 6 - len(m.logs)
	if m.height <= 0 || avail <= 0 || len(lines)-head <= avail {
		return rendered
	}

	start := 0
	if m.selected >= avail {
		start = m.selected - avail + 1
	}
	body := lines[head:]
	end := start + avail
	if end > len(body) {
		end = len(body)
	}
	return strings.Join(append(lines[:head:head], body[start:end]...), "\n")
}

// Rows exposes the backing collection
func (m Model) Rows() []row.Row {
	return m.opts.Store.Rows()
}

// Err returns the most recent reported failure
func (m Model) Err() error {
	return m.lastErr
}

// Selected returns the highlighted row index
func (m Model) Selected() int {
	return m.selected
}

// truncate clips s to width display cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func logEntry(level, message string) LogEntry {
	return LogEntry{Level: level, Message: message, Timestamp: time.Now()}
}
