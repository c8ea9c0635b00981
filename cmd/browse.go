package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rail44/roster/internal/gateway"
	"github.com/rail44/roster/internal/store"
	"github.com/rail44/roster/internal/ui"
)

var plain bool

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse users in an interactive table",
	Long: `Browse loads every user into a table and binds the mutations to keys:

  a  add the configured user         d  delete the selected user
  m  rename the selected user        g  show the selected user
  r  reload                          q  quit

When stdout is not a terminal, or with --plain, the table is printed once.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("failed to load configuration", err)
		}
		cfg.Plain = plain

		sch, err := cfg.Schema()
		if err != nil {
			fatal("failed to compile columns", err)
		}
		payload, err := cfg.CreatePayload()
		if err != nil {
			fatal("failed to load create payload", err)
		}

		events := gateway.NewEvents(16)
		client, err := newClient(cfg, gateway.WithReporter(events))
		if err != nil {
			fatal("failed to create client", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		program := ui.NewProgram(ctx, ui.Options{
			Schema:        sch,
			Gateway:       client,
			Store:         store.New(),
			Failures:      events.C(),
			CreatePayload: payload,
			ModifyName:    cfg.ModifyName,
			MaxCellWidth:  cfg.MaxCellWidth,
			Endpoint:      client.Endpoint(),
		}, ui.ProgramOptions{Plain: cfg.Plain})

		if err := program.Run(); err != nil {
			fatal("browse failed", err)
		}
	},
}

func init() {
	browseCmd.Flags().BoolVar(&plain, "plain", false, "print the table once instead of starting the interactive view")
	rootCmd.AddCommand(browseCmd)
}
