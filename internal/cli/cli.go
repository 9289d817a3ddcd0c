package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tagsync/internal/config"
)

// Execute runs the CLI application.
func Execute() {
	cfg := config.Load()
	setupLogging(os.Stderr, cfg.LogLevel)

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tagsync",
		Short: "Keep vocal tags consistent across a multilingual script corpus",
		Long: `tagsync strips unlisted and silent vocal tags from the canonical scripts,
replays the removals into every translated variant by dialogue number and
regenerates the category header of annotated files.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("dry-run", cfg.DryRun, "Report changes without writing files")
	rootCmd.PersistentFlags().String("log-dir", cfg.LogDir, "Directory for removal logs (default: corpus parent)")
	rootCmd.PersistentFlags().String("vocabulary", cfg.VocabularyPath, "Tag vocabulary TOML (default: embedded)")

	rootCmd.AddCommand(mergeCmd(cfg))
	rootCmd.AddCommand(auditCmd(cfg))
	rootCmd.AddCommand(stripUnlistedCmd(cfg))
	rootCmd.AddCommand(stripSilentCmd(cfg))
	rootCmd.AddCommand(propagateEndCmd(cfg))
	rootCmd.AddCommand(propagateStartCmd(cfg))
	rootCmd.AddCommand(headerCmd(cfg))
	rootCmd.AddCommand(runCmd(cfg))
	rootCmd.AddCommand(vocabularyCmd())
	rootCmd.AddCommand(ledgerCmd(cfg))
	rootCmd.AddCommand(graphCmd(cfg))

	return rootCmd
}

// setupLogging configures the global logger. Colour is used only on a terminal.
func setupLogging(out io.Writer, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	noColor := true
	if f, ok := out.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, NoColor: noColor})

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
