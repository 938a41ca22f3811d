// Package cmd defines and implements the CLI commands for the teamlogos
// executable.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/team-logo-scraper/internal/app"
	"github.com/JakeFAU/team-logo-scraper/internal/config"
	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
	"github.com/JakeFAU/team-logo-scraper/internal/id/uuid"
	"github.com/JakeFAU/team-logo-scraper/internal/logging"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	cfgFile string
	output  string
	ranges  []string
}

// newRootCmd creates and configures the root command. Running it without a
// subcommand performs a scrape.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "teamlogos",
		Short: "Scrapes team names and logo URLs from vlr.gg team pages.",
		Long: `teamlogos walks numeric team identifiers on vlr.gg, extracts each team's
name and logo URL, and keeps the results in a JSON file. Re-running resumes
from the existing file and only adds teams it has not seen before.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (YAML); defaults and TEAMLOGOS_* env vars apply without it")
	cmd.PersistentFlags().StringVar(&opts.output, "output", "", "output JSON file (overrides scraper.output_file)")
	cmd.Flags().StringArrayVar(&opts.ranges, "range", nil, "team id range start:end; repeat for several (overrides scraper.ranges)")

	cmd.AddCommand(newListCmd(opts))
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.output != "" {
		cfg.Scraper.OutputFile = opts.output
	}
	if len(opts.ranges) > 0 {
		ranges := make([]crawler.Range, 0, len(opts.ranges))
		for _, raw := range opts.ranges {
			r, err := config.ParseRange(raw)
			if err != nil {
				return config.Config{}, fmt.Errorf("--range: %w", err)
			}
			ranges = append(ranges, r)
		}
		cfg.Scraper.Ranges = ranges
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("run_id", runID)), nil
}

func runScrape(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	a, err := app.New(ctx, cfg, logger, app.Options{
		Stdout:      out,
		Interactive: isTerminal(out),
	})
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	logger.Info("scrape starting",
		zap.String("output", a.OutputPath()),
		zap.Int("candidates", crawler.TotalCandidates(cfg.Scraper.Ranges)),
	)
	summary, err := a.Run(ctx)
	if err != nil {
		logger.Error("scrape failed", zap.Error(err))
		return err
	}
	if summary.Interrupted {
		logger.Warn("scrape interrupted; progress saved", zap.Error(context.Cause(ctx)))
	}

	_, err = fmt.Fprintf(out, "Completed! Found %d teams out of %d requests made to %s\n",
		summary.Found, summary.Requests, a.OutputPath())
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
