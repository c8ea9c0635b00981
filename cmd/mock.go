package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rail44/roster/internal/log"
	"github.com/rail44/roster/internal/mockapi"
)

var (
	mockAddr string
	mockSeed string
	mockRate int
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve an in-memory users API",
	Long: `Mock serves the users collection on --addr with the same routes as the
public jsonplaceholder service, except that writes are kept in memory.

With --seed the collection is loaded from a JSON array and reloaded whenever
the file changes.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fatal("failed to load configuration", err)
		}

		seed := mockapi.DefaultUsers()
		if mockSeed != "" {
			seed, err = mockapi.LoadSeed(mockSeed)
			if err != nil {
				fatal("failed to load seed", err)
			}
		}
		store := mockapi.NewStore(seed)

		srv := &http.Server{
			Addr: mockAddr,
			Handler: mockapi.NewRouter(store, mockapi.Options{
				Resource:          cfg.Resource,
				RequestsPerMinute: mockRate,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)

		if mockSeed != "" {
			watcher, err := mockapi.NewSeedWatcher(mockSeed, store, nil)
			if err != nil {
				fatal("failed to watch seed", err)
			}
			defer watcher.Close()
			g.Go(func() error {
				watcher.Start(ctx)
				return nil
			})
		}

		g.Go(func() error {
			log.Info("mock API listening",
				slog.String("addr", mockAddr),
				slog.Int("users", len(seed)))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			fatal("mock API stopped", err)
		}
		log.Info("mock API stopped")
	},
}

func init() {
	mockCmd.Flags().StringVar(&mockAddr, "addr", ":8080", "listen address")
	mockCmd.Flags().StringVar(&mockSeed, "seed", "", "JSON file with the initial users (watched for changes)")
	mockCmd.Flags().IntVar(&mockRate, "rate", 0, "requests per minute per client; 0 disables limiting")
	rootCmd.AddCommand(mockCmd)
}
