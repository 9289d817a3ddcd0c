package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tagsync/internal/audit"
	"tagsync/internal/config"
	"tagsync/internal/corpus"
	"tagsync/internal/sweep"
)

// corpusCommand wires the session lifecycle around one corpus operation and
// prints the summary when it returns.
func corpusCommand(cfg *config.Config, mutating bool, fn func(cmd *cobra.Command, s *session) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := setupContext()
		defer cancel()

		s, err := openSession(ctx, cmd, cfg, args[0], mutating)
		if err != nil {
			return err
		}
		defer s.close()

		if err := fn(cmd, s); err != nil {
			return err
		}

		s.summary.render(cmd.OutOrStdout())
		log.Info().Str("run", s.runID).Int("failed", s.summary.failures()).Msg("Run complete")
		return nil
	}
}

func mergeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <corpus-root>",
		Short: "Drop blank lines and fold continuation lines into their numbered record",
		Args:  cobra.ExactArgs(1),
		RunE: corpusCommand(cfg, true, func(cmd *cobra.Command, s *session) error {
			s.merge()
			return nil
		}),
	}
}

func stripUnlistedCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "strip-unlisted <corpus-root>",
		Short: "Remove end tags that are not on the allow-list and log every removal",
		Args:  cobra.ExactArgs(1),
		RunE: corpusCommand(cfg, true, func(cmd *cobra.Command, s *session) error {
			return s.stripUnlisted()
		}),
	}
}

func stripSilentCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "strip-silent <corpus-root>",
		Short: "Remove silent stage-direction tags from the start of lines",
		Args:  cobra.ExactArgs(1),
		RunE: corpusCommand(cfg, true, func(cmd *cobra.Command, s *session) error {
			return s.stripSilent()
		}),
	}
}

func propagateEndCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propagate-end <corpus-root>",
		Short: "Replay canonical end-tag removals into every translated tag_match file",
		Long: `Pools the dialogue numbers of every end-tag removal logged for a canonical
file and strips the end tag of those dialogues from the tag_match files of
every other variant.`,
		Args: cobra.ExactArgs(1),
		RunE: corpusCommand(cfg, true, func(cmd *cobra.Command, s *session) error {
			logPath, _ := cmd.Flags().GetString("log")
			return s.propagateEnd(logPath)
		}),
	}
	cmd.Flags().String("log", "", "End-tag removal log to replay (default: <log-dir>/"+unlistedEndLog+")")
	return cmd
}

func propagateStartCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propagate-start <corpus-root>",
		Short: "Replay start-tag removals into the tag_match file of each source file",
		Args:  cobra.ExactArgs(1),
		RunE: corpusCommand(cfg, true, func(cmd *cobra.Command, s *session) error {
			logPath, _ := cmd.Flags().GetString("log")
			return s.propagateStart(logPath)
		}),
	}
	cmd.Flags().String("log", "", "Start-tag removal log to replay (default: <log-dir>/"+silentStartLog+")")
	return cmd
}

func headerCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "header <corpus-root>",
		Short: "Regenerate the category header of every annotated file",
		Args:  cobra.ExactArgs(1),
		RunE: corpusCommand(cfg, true, func(cmd *cobra.Command, s *session) error {
			s.regenerateHeaders()
			return nil
		}),
	}
}

func runCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run <corpus-root>",
		Short: "Run the full pipeline: merge, sweeps, propagation, header",
		Long: `Runs every step in the order the corpus requires: continuation lines are
merged before any numbering is trusted, canonical sweeps write the removal
logs, the logs are replayed into the translated variants, and headers are
regenerated last from the final tag state.`,
		Args: cobra.ExactArgs(1),
		RunE: corpusCommand(cfg, true, func(cmd *cobra.Command, s *session) error {
			s.merge()
			if err := s.stripUnlisted(); err != nil {
				return err
			}
			if err := s.stripSilent(); err != nil {
				return err
			}
			if err := s.propagateEnd(""); err != nil {
				return err
			}
			if err := s.propagateStart(""); err != nil {
				return err
			}
			s.regenerateHeaders()
			return nil
		}),
	}
}

func auditCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <corpus-root>",
		Short: "Write discovery reports: unlisted end tags, start tags, end-tag frequency",
		Args:  cobra.ExactArgs(1),
		RunE: corpusCommand(cfg, false, func(cmd *cobra.Command, s *session) error {
			outDir, _ := cmd.Flags().GetString("out")
			if outDir == "" {
				outDir = s.logDir
			}
			return s.audit(outDir)
		}),
	}
	cmd.Flags().String("out", "", "Directory for the reports (default: log directory)")
	return cmd
}

func (s *session) audit(outDir string) error {
	scanner := audit.NewScanner(s.validator, s.cfg.WorkerCount)
	numbered := scanner.Scan(s.ctx, sweep.EndTagTargets(s.index))
	plain := scanner.Scan(s.ctx, s.index.Filter(func(f corpus.File) bool {
		return f.ID.Role() == corpus.RolePlain && f.ID.Form == corpus.FormLines
	}))

	reports := []struct {
		name  string
		write func(*os.File) error
	}{
		{"tags_at_end.txt", func(f *os.File) error { return audit.WriteUnlisted(f, numbered.Unlisted()) }},
		{"all_start_tags.txt", func(f *os.File) error { return audit.WriteStartTags(f, plain.StartTags()) }},
		{"end_of_line_tags_report.txt", func(f *os.File) error { return audit.WriteFrequency(f, numbered.EndTags()) }},
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	for _, r := range reports {
		path := filepath.Join(outDir, r.name)
		if err := writeReport(path, r.write); err != nil {
			return err
		}
		s.summary.logs = append(s.summary.logs, path)
	}

	failed := len(numbered.Failed) + len(plain.Failed)
	s.summary.failed = append(s.summary.failed, numbered.Failed...)
	s.summary.failed = append(s.summary.failed, plain.Failed...)
	s.summary.add(stepRow{
		Step:    "audit",
		Scanned: len(numbered.Files) + len(plain.Files),
		Failed:  failed,
	})
	log.Info().
		Int("unlisted", len(numbered.Unlisted())).
		Int("start_tags", len(plain.StartTags())).
		Msg("Audit reports written")
	return nil
}

func writeReport(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

func vocabularyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vocabulary",
		Short: "Print the embedded default tag vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultVocabulary())
			return err
		},
	}
}
