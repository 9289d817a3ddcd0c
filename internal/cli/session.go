package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tagsync/internal/config"
	"tagsync/internal/corpus"
	"tagsync/internal/ledger"
	"tagsync/internal/removallog"
	"tagsync/internal/tags"
	"tagsync/internal/worker"
)

// Removal log file names, kept from the scripts that first produced them.
const (
	unlistedEndLog   = "address_number_removed_tags_end.txt"
	silentStartLog   = "start_removed.txt"
	propagatedEndLog = "translated_removed_tags.txt"
	propagatedStart  = "tag_match_removed.txt"
)

// ledgerBatchSize bounds how many records are archived per Append call.
const ledgerBatchSize = 500

// session holds what every corpus command needs for one run.
type session struct {
	ctx       context.Context
	cfg       *config.Config
	index     *corpus.Index
	validator *tags.Validator
	runID     string
	logDir    string
	dryRun    bool
	unlock    func() error
	ledger    *ledger.Store
	pgPool    *pgxpool.Pool
	summary   *summary
}

// openSession loads the vocabulary, indexes the corpus and, for mutating
// commands, takes the corpus lock. A missing root is fatal.
func openSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config, root string, mutating bool) (*session, error) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	logDir, _ := cmd.Flags().GetString("log-dir")
	vocabPath, _ := cmd.Flags().GetString("vocabulary")

	vocab, err := config.LoadVocabulary(vocabPath)
	if err != nil {
		return nil, err
	}

	index, err := corpus.NewWalker(cfg.CanonicalPrefix).Walk(root)
	if err != nil {
		return nil, err
	}

	s := &session{
		ctx:       ctx,
		cfg:       cfg,
		index:     index,
		validator: tags.NewValidator(vocab),
		runID:     uuid.NewString(),
		logDir:    logDir,
		dryRun:    dryRun,
		summary:   newSummary(),
	}
	if s.logDir == "" {
		s.logDir = filepath.Dir(index.Root())
	}

	if mutating && !dryRun {
		unlock, err := corpus.Lock(index.Root())
		if err != nil {
			return nil, err
		}
		s.unlock = unlock
	}

	if mutating && cfg.LedgerEnabled() {
		if err := s.openLedger(); err != nil {
			s.close()
			return nil, err
		}
	}

	log.Info().
		Str("run", s.runID).
		Str("root", index.Root()).
		Int("allowed", s.validator.AllowedCount()).
		Int("silent", s.validator.SilentCount()).
		Bool("dry_run", dryRun).
		Msg("Session opened")
	return s, nil
}

func (s *session) openLedger() error {
	pool, err := connectPostgres(s.ctx, s.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	store := ledger.NewStore(pool)
	if err := store.EnsureSchema(s.ctx); err != nil {
		pool.Close()
		return err
	}
	s.pgPool = pool
	s.ledger = store
	return nil
}

func (s *session) close() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.unlock != nil {
		if err := s.unlock(); err != nil {
			log.Warn().Err(err).Msg("Failed to release corpus lock")
		}
	}
}

// logPath resolves a removal log name inside the log directory. Dry runs
// write beside the real logs so they are never replayed by mistake.
func (s *session) logPath(name string) string {
	if s.dryRun {
		name = strings.TrimSuffix(name, ".txt") + ".dry-run.txt"
	}
	return filepath.Join(s.logDir, name)
}

// writeLog serializes records and mirrors them into the ledger.
func (s *session) writeLog(name string, shape removallog.Shape, meta removallog.Meta, records []removallog.Record) (string, error) {
	path := s.logPath(name)
	meta.RunID = s.runID
	if s.dryRun {
		meta.Notes = append(meta.Notes, "Mode: dry run, no files were modified")
	}
	if err := removallog.WriteFile(path, shape, meta, records); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Int("records", len(records)).Msg("Removal log written")

	if s.ledger != nil && !s.dryRun && len(records) > 0 {
		for _, batch := range worker.Batch(records, ledgerBatchSize) {
			if _, err := s.ledger.Append(s.ctx, s.runID, batch); err != nil {
				log.Error().Err(err).Msg("Failed to archive removals")
				break
			}
		}
	}
	return path, nil
}

// readLog parses a removal log given on the command line or by name. A
// missing log is fatal.
func (s *session) readLog(explicit, name string) (*removallog.Log, error) {
	path := explicit
	if path == "" {
		path = s.logPath(name)
	}
	l, err := removallog.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if l.Unparsed > 0 {
		log.Warn().Str("path", path).Int("lines", l.Unparsed).Msg("Unparsed removal log lines")
	}
	log.Info().Str("path", path).Int("records", len(l.Records)).Msg("Removal log loaded")
	return l, nil
}

// connectPostgres opens and pings a pgx pool.
func connectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}
