package graph

import (
	"context"
	"fmt"

	"tagsync/internal/corpus"
	"tagsync/internal/removallog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Executor runs one write statement.
type Executor func(ctx context.Context, cypher string, params map[string]any) error

// SessionExecutor adapts a Neo4j session to an Executor.
func SessionExecutor(session neo4j.SessionWithContext) Executor {
	return func(ctx context.Context, cypher string, params map[string]any) error {
		_, err := session.Run(ctx, cypher, params)
		return err
	}
}

// SyncStats counts what one sync wrote.
type SyncStats struct {
	Variants        int
	Files           int
	Correspondences int
	Removals        int
}

// GraphBuilder mirrors the corpus layout and removal history into Neo4j.
type GraphBuilder struct {
	exec Executor
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(exec Executor) *GraphBuilder {
	return &GraphBuilder{exec: exec}
}

// EnsureSchema creates constraints on the Neo4j database.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (v:Variant) REQUIRE v.folder IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (f:ScriptFile) REQUIRE f.path IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Dialogue) REQUIRE d.number IS UNIQUE",
	}

	for _, c := range constraints {
		if err := gb.exec(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// SyncCorpus upserts variants, files and the resolved tag_match
// correspondences of the index.
func (gb *GraphBuilder) SyncCorpus(ctx context.Context, ix *corpus.Index) (SyncStats, error) {
	var stats SyncStats

	seen := make(map[string]struct{})
	for _, f := range ix.Files() {
		if _, ok := seen[f.ID.Folder]; !ok {
			seen[f.ID.Folder] = struct{}{}
			err := gb.exec(ctx, `
				MERGE (v:Variant {folder: $folder})
				SET v.canonical = $canonical
			`, map[string]any{
				"folder":    f.ID.Folder,
				"canonical": f.Canonical,
			})
			if err != nil {
				return stats, fmt.Errorf("upsert variant %s: %w", f.ID.Folder, err)
			}
			stats.Variants++
		}

		err := gb.exec(ctx, `
			MATCH (v:Variant {folder: $folder})
			MERGE (f:ScriptFile {path: $path})
			SET f.id = $id,
			    f.stem = $stem,
			    f.role = $role,
			    f.form = $form
			MERGE (v)-[:HAS_FILE]->(f)
		`, map[string]any{
			"folder": f.ID.Folder,
			"path":   f.Path,
			"id":     f.ID.Key(),
			"stem":   f.ID.Stem,
			"role":   f.ID.Role().String(),
			"form":   f.ID.Form.String(),
		})
		if err != nil {
			return stats, fmt.Errorf("upsert script file %s: %w", f.Path, err)
		}
		stats.Files++
	}

	for _, f := range ix.Files() {
		target, res := ix.TagMatchFor(f)
		if res != corpus.Resolved {
			continue
		}
		err := gb.exec(ctx, `
			MATCH (a:ScriptFile {path: $from})
			MATCH (b:ScriptFile {path: $to})
			MERGE (a)-[:CORRESPONDS_TO]->(b)
		`, map[string]any{
			"from": f.Path,
			"to":   target.Path,
		})
		if err != nil {
			return stats, fmt.Errorf("link %s: %w", f.Path, err)
		}
		stats.Correspondences++
	}

	log.Info().
		Int("variants", stats.Variants).
		Int("files", stats.Files).
		Int("correspondences", stats.Correspondences).
		Msg("Synced corpus graph")
	return stats, nil
}

// AddRemovals records each numbered removal as a REMOVED edge from the file
// to its dialogue node.
func (gb *GraphBuilder) AddRemovals(ctx context.Context, records []removallog.Record) (int, error) {
	added := 0
	for _, r := range records {
		if r.Dialogue <= 0 {
			continue
		}
		err := gb.exec(ctx, `
			MERGE (f:ScriptFile {path: $path})
			MERGE (d:Dialogue {number: $number})
			MERGE (f)-[r:REMOVED {tag: $tag, position: $position}]->(d)
			SET r.line = $line
		`, map[string]any{
			"path":     r.Path,
			"number":   r.Dialogue,
			"tag":      r.Tag,
			"position": r.Position.String(),
			"line":     r.FileLine,
		})
		if err != nil {
			return added, fmt.Errorf("add removal %s:%d: %w", r.Path, r.FileLine, err)
		}
		added++
	}

	log.Info().Int("removals", added).Msg("Added removal edges")
	return added, nil
}
