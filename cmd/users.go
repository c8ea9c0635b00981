package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rail44/roster/internal/config"
	"github.com/rail44/roster/internal/formatter"
	"github.com/rail44/roster/internal/log"
	"github.com/rail44/roster/internal/row"
	"github.com/rail44/roster/internal/table"
)

var (
	outputFormat string
	createFile   string
	updateSets   []string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runUsers(func(ctx context.Context, cfg *config.Config) ([]row.Row, error) {
			client, err := newClient(cfg)
			if err != nil {
				return nil, err
			}
			return client.List(ctx)
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>...",
	Short: "Print one or more users by id",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runUsers(func(ctx context.Context, cfg *config.Config) ([]row.Row, error) {
			client, err := newClient(cfg)
			if err != nil {
				return nil, err
			}
			return client.GetMany(ctx, args)
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create posts a user record and prints the stored copy.

The record comes from --file, the [create] payload in roster.toml, or the
built-in sample user, in that order.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runUsers(func(ctx context.Context, cfg *config.Config) ([]row.Row, error) {
			if createFile != "" {
				cfg.Create.Payload = createFile
			}
			payload, err := cfg.CreatePayload()
			if err != nil {
				return nil, err
			}
			client, err := newClient(cfg)
			if err != nil {
				return nil, err
			}
			created, err := client.Create(ctx, payload)
			if err != nil {
				return nil, err
			}
			return []row.Row{created}, nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a user",
	Long: `Update sends a partial update for one user.

Each --set takes a dotted path and a value, e.g. --set address.city=Lima.
Values that parse as JSON (numbers, booleans, objects) are sent as such;
anything else is sent as a string. Without --set the name is changed to the
configured modify_name.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runUsers(func(ctx context.Context, cfg *config.Config) ([]row.Row, error) {
			fields, err := parseSets(updateSets)
			if err != nil {
				return nil, err
			}
			if len(fields) == 0 {
				fields = row.Row{"name": cfg.ModifyName}
			}
			client, err := newClient(cfg)
			if err != nil {
				return nil, err
			}
			updated, err := client.UpdateFields(ctx, args[0], fields)
			if err != nil {
				return nil, err
			}
			return []row.Row{updated}, nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("failed to load configuration", err)
		}
		client, err := newClient(cfg)
		if err != nil {
			fatal("failed to create client", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := client.Delete(ctx, args[0]); err != nil {
			fatal("delete failed", err)
		}
		log.Info("user deleted", slog.String("id", args[0]))
	},
}

// runUsers loads config, runs fetch and prints the result with -o
func runUsers(fetch func(ctx context.Context, cfg *config.Config) ([]row.Row, error)) {
	format, err := formatter.ParseFormat(outputFormat)
	if err != nil {
		fatal("invalid output format", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		fatal("failed to load configuration", err)
	}
	sch, err := cfg.Schema()
	if err != nil {
		fatal("failed to compile columns", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rows, err := fetch(ctx, cfg)
	if err != nil {
		fatal("request failed", err)
	}

	printer := &formatter.Printer{
		Format: format,
		Schema: sch,
		Options: table.RenderOptions{
			MaxCellWidth: cfg.MaxCellWidth,
			Plain:        !term.IsTerminal(int(os.Stdout.Fd())),
		},
	}
	if err := printer.Print(os.Stdout, rows); err != nil {
		fatal("failed to print users", err)
	}
}

// parseSets turns path=value pairs into a nested patch
func parseSets(sets []string) (row.Row, error) {
	fields := row.Row{}
	for _, s := range sets {
		path, raw, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("invalid --set %q: want path=value", s)
		}
		fields.Set(strings.TrimSpace(path), parseValue(raw))
	}
	return fields, nil
}

func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func init() {
	for _, c := range []*cobra.Command{listCmd, getCmd, createCmd, updateCmd} {
		c.Flags().StringVarP(&outputFormat, "output", "o", string(formatter.FormatTable), "output format: table, markdown, json, yaml")
	}
	createCmd.Flags().StringVarP(&createFile, "file", "f", "", "JSON file holding the user to create")
	updateCmd.Flags().StringArrayVar(&updateSets, "set", nil, "field to change as path=value (repeatable)")

	rootCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
}
