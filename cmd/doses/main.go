/*
main.go - Application entry point

PURPOSE:
  Command line for the dose engine: runs the HTTP server or answers schedule
  questions directly against the database.

COMMANDS:
  serve             Start the HTTP API (graceful shutdown on SIGINT/SIGTERM)
  due [--date]      Print the active drugs due on a date (default: today)
  supply            Print the supply projection of every active drug

FLAGS:
  --db      SQLite database path, overrides DB_PATH
  --port    HTTP server port (serve only), overrides PORT

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the supply monitor
  4. Close database connection

ENVIRONMENT:
  See config/config.go for the variables and their defaults.

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rxdose/dose-engine/api"
	"github.com/rxdose/dose-engine/config"
	"github.com/rxdose/dose-engine/drug"
	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
	"github.com/rxdose/dose-engine/store/sqlite"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "doses",
		Short:         "Medication dose schedule engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides DB_PATH)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dueCmd())
	rootCmd.AddCommand(supplyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig applies command line overrides on top of the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	fraction.DisplayMixedNumbers = cfg.MixedNumbers
	return cfg, nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Port = port
			}
			return runServer(cfg)
		},
	}
	cmd.Flags().Int("port", 0, "HTTP server port (overrides PORT)")
	return cmd
}

func runServer(cfg *config.Config) error {
	logger := cfg.Logger(os.Stdout)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error().Err(err).Str("db", cfg.DBPath).Msg("failed to initialize database")
		return err
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, logger)
	handler.LowSupplyDays = cfg.LowSupplyDays
	handler.MixedNumbers = cfg.MixedNumbers

	monitor := api.NewSupplyMonitor(store, logger, cfg.LowSupplyDays)
	monitor.CheckInterval = cfg.SupplyCheckInterval
	monitor.Enabled = cfg.SupplyCheckInterval > 0
	monitor.Start()
	defer monitor.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler, monitor, cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Port).Str("db", cfg.DBPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		logger.Error().Err(err).Msg("server failed")
		return err
	case <-quit:
	}

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

func dueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the active drugs with a dose due on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			day := generic.Today()
			if s, _ := cmd.Flags().GetString("date"); s != "" {
				if day, err = generic.ParseDate(s); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}

			drugs, err := listDrugs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			due, err := drug.DueOn(drugs, day.Time)
			if err != nil {
				return err
			}
			return printDue(cmd.OutOrStdout(), day, due)
		},
	}
	cmd.Flags().String("date", "", "Date to check (YYYY-MM-DD, default today)")
	return cmd
}

func supplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supply",
		Short: "Show how long the supply of each active drug lasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			drugs, err := listDrugs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return printSupply(cmd.OutOrStdout(), drugs, cfg.LowSupplyDays)
		},
	}
}

func listDrugs(ctx context.Context, cfg *config.Config) ([]*drug.Drug, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.List(ctx)
}

// =============================================================================
// OUTPUT
// =============================================================================

func printDue(out io.Writer, day generic.TimePoint, due []*drug.Drug) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s (%s)\n", day, day.Weekday())
	fmt.Fprintln(w, "NAME\tFORM\tMORNING\tNOON\tEVENING\tNIGHT")
	for _, d := range due {
		doses := d.Schedule()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", d.Name(), d.Form(),
			doses[drug.Morning], doses[drug.Noon], doses[drug.Evening], doses[drug.Night])
	}
	return w.Flush()
}

func printSupply(out io.Writer, drugs []*drug.Drug, lowSupplyDays int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSUPPLY\tPER DAY\tDAYS\tLOW")
	for _, d := range drugs {
		if !d.Active() {
			continue
		}
		report := d.Supply(lowSupplyDays)
		days := "-"
		if report.Depletes {
			days = report.DaysOfSupply.Value.StringFixed(1)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", d.Name(), d.CurrentSupply(),
			report.DailyConsumption.Value.StringFixed(2), days, report.Low)
	}
	return w.Flush()
}
