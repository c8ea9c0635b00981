package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/rail44/roster/internal/log"
	"github.com/rail44/roster/internal/store"
	"github.com/rail44/roster/internal/table"
)

// ProgramOptions contains options for creating a Program
type ProgramOptions struct {
	Plain  bool      // Print the table once instead of running the TUI
	Output io.Writer // Destination for plain output; defaults to stdout
}

// Program runs the browser either as a full-screen TUI or, when stdout is
// not a terminal, as a one-shot table dump.
type Program struct {
	ctx        context.Context
	opts       Options
	output     io.Writer
	isTerminal bool // Whether stdout is a terminal
	plain      bool // Whether to use plain text output
}

// NewProgram creates a browser program
func NewProgram(ctx context.Context, opts Options, popts ProgramOptions) *Program {
	output := popts.Output
	if output == nil {
		output = os.Stdout
	}
	if opts.Store == nil {
		opts.Store = store.New()
	}
	return &Program{
		ctx:        ctx,
		opts:       opts,
		output:     output,
		isTerminal: term.IsTerminal(int(os.Stdout.Fd())),
		plain:      popts.Plain,
	}
}

// IsTUIEnabled returns whether the TUI is enabled
func (p *Program) IsTUIEnabled() bool {
	return p.isTerminal && !p.plain
}

// Run blocks until the user quits (TUI) or the table is printed (plain)
func (p *Program) Run() error {
	if !p.IsTUIEnabled() {
		return p.runPlain()
	}

	model := NewModel(p.ctx, p.opts)
	teaProgram := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(p.ctx))

	// Route log output into the footer while the alt screen is active
	log.SetCallback(func(r slog.Record) {
		teaProgram.Send(logMsg{entry: logEntry(r.Level.String(), log.Format(r))})
	})
	defer log.SetOutput(os.Stderr)

	final, err := teaProgram.Run()
	if m, ok := final.(Model); ok {
		m.cancel()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run UI: %w", err)
	}
	return nil
}

func (p *Program) runPlain() error {
	since := p.opts.Store.Begin()
	rows, err := p.opts.Gateway.List(p.ctx)
	if err != nil {
		return err
	}
	p.opts.Store.ReplaceAll(rows, since)

	renderer := table.NewRenderer(table.RenderOptions{
		Selected:     -1,
		MaxCellWidth: p.opts.MaxCellWidth,
		Plain:        true,
	})
	_, err = fmt.Fprintln(p.output, renderer.Render(table.Build(p.opts.Schema, p.opts.Store.Rows())))
	return err
}
