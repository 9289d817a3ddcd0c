package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tagsync/internal/config"
	"tagsync/internal/graph"
	"tagsync/internal/ledger"
	"tagsync/internal/removallog"
)

func ledgerCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Work with the PostgreSQL removal ledger",
	}

	export := &cobra.Command{
		Use:   "export <output-path>",
		Short: "Export archived removals as TSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			runID, _ := cmd.Flags().GetString("run")
			return runLedgerExport(cfg, args[0], format, runID)
		},
	}
	export.Flags().String("format", "tsv", "Export format: tsv or json")
	export.Flags().String("run", "", "Only export one run id")

	cmd.AddCommand(export)
	return cmd
}

func runLedgerExport(cfg *config.Config, outputPath, format, runID string) error {
	ctx, cancel := setupContext()
	defer cancel()

	pool, err := connectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := ledger.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	var entries []ledger.Entry
	if runID != "" {
		entries, err = store.ListRun(ctx, runID)
	} else {
		entries, err = store.ListAll(ctx)
	}
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return ledger.ExportJSON(entries, outputPath)
	case "tsv":
		return ledger.ExportTSV(entries, outputPath)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func graphCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Mirror the corpus and its removal history into Neo4j",
	}

	sync := &cobra.Command{
		Use:   "sync <corpus-root>",
		Short: "Upsert variants, files, correspondences and logged removals",
		Args:  cobra.ExactArgs(1),
		RunE: corpusCommand(cfg, false, func(cmd *cobra.Command, s *session) error {
			logs, _ := cmd.Flags().GetStringSlice("log")
			return s.syncGraph(logs)
		}),
	}
	sync.Flags().StringSlice("log", nil, "Removal logs to load (default: every log in the log directory)")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show removal counts per variant from the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			driver, err := connectNeo4j(ctx, cfg)
			if err != nil {
				return err
			}
			defer driver.Close(ctx)

			neoSession := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
			defer neoSession.Close(ctx)

			rows, err := graph.NewGraphQuerier(graph.SessionQuerier(neoSession)).RemovalsByVariant(ctx)
			if err != nil {
				return err
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{r.Folder, strconv.FormatBool(r.Canonical), strconv.Itoa(r.Start), strconv.Itoa(r.End)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Variant", "Canonical", "Start", "End"},
				table,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.AddCommand(sync, status)
	return cmd
}

func (s *session) syncGraph(logPaths []string) error {
	driver, err := connectNeo4j(s.ctx, s.cfg)
	if err != nil {
		return err
	}
	defer driver.Close(s.ctx)

	neoSession := driver.NewSession(s.ctx, neo4j.SessionConfig{})
	defer neoSession.Close(s.ctx)

	builder := graph.NewGraphBuilder(graph.SessionExecutor(neoSession))
	if err := builder.EnsureSchema(s.ctx); err != nil {
		return err
	}

	stats, err := builder.SyncCorpus(s.ctx, s.index)
	if err != nil {
		return err
	}

	explicit := len(logPaths) > 0
	if !explicit {
		for _, name := range []string{unlistedEndLog, silentStartLog, propagatedEndLog, propagatedStart} {
			logPaths = append(logPaths, s.logPath(name))
		}
	}

	var records []removallog.Record
	for _, p := range logPaths {
		l, err := removallog.ParseFile(p)
		if err != nil {
			if !explicit && errors.Is(err, removallog.ErrLogNotFound) {
				log.Debug().Str("path", p).Msg("Removal log absent, skipping")
				continue
			}
			return err
		}
		s.summary.unparsed += l.Unparsed
		records = append(records, l.Records...)
	}

	added, err := builder.AddRemovals(s.ctx, records)
	if err != nil {
		return err
	}

	s.summary.add(stepRow{
		Step:     "graph-sync",
		Scanned:  stats.Files,
		Modified: stats.Correspondences,
		Removed:  added,
	})
	return nil
}

// connectNeo4j opens a driver and verifies connectivity.
func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	if !cfg.GraphEnabled() {
		return nil, errors.New("NEO4J_URI is not set")
	}
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}
