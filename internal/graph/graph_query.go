package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Querier runs one read statement and returns its rows as maps.
type Querier func(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)

// SessionQuerier adapts a Neo4j session to a Querier.
func SessionQuerier(session neo4j.SessionWithContext) Querier {
	return func(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
		result, err := session.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		var rows []map[string]any
		for result.Next(ctx) {
			rows = append(rows, result.Record().AsMap())
		}
		return rows, result.Err()
	}
}

// VariantRemovals is the removal count of one variant folder.
type VariantRemovals struct {
	Folder    string
	Canonical bool
	Start     int
	End       int
}

// GraphQuerier reads removal history back out of the graph.
type GraphQuerier struct {
	query Querier
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(query Querier) *GraphQuerier {
	return &GraphQuerier{query: query}
}

// RemovalsByVariant counts REMOVED edges per variant and position.
func (gq *GraphQuerier) RemovalsByVariant(ctx context.Context) ([]VariantRemovals, error) {
	rows, err := gq.query(ctx, `
		MATCH (v:Variant)-[:HAS_FILE]->(f:ScriptFile)-[r:REMOVED]->(:Dialogue)
		RETURN v.folder AS folder, v.canonical AS canonical, r.position AS position, count(r) AS removals
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("query removals by variant: %w", err)
	}

	byFolder := make(map[string]*VariantRemovals)
	for _, row := range rows {
		folder := fmt.Sprintf("%v", row["folder"])
		vr, ok := byFolder[folder]
		if !ok {
			canonical, _ := row["canonical"].(bool)
			vr = &VariantRemovals{Folder: folder, Canonical: canonical}
			byFolder[folder] = vr
		}
		n, _ := row["removals"].(int64)
		if fmt.Sprintf("%v", row["position"]) == "end" {
			vr.End += int(n)
		} else {
			vr.Start += int(n)
		}
	}

	out := make([]VariantRemovals, 0, len(byFolder))
	for _, vr := range byFolder {
		out = append(out, *vr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folder < out[j].Folder })

	log.Debug().Int("variants", len(out)).Msg("Graph query complete")
	return out, nil
}

// RemovedDialogues lists the dialogue numbers stripped from one file.
func (gq *GraphQuerier) RemovedDialogues(ctx context.Context, path string) ([]int, error) {
	rows, err := gq.query(ctx, `
		MATCH (:ScriptFile {path: $path})-[:REMOVED]->(d:Dialogue)
		RETURN DISTINCT d.number AS number
		ORDER BY number
	`, map[string]any{"path": path})
	if err != nil {
		return nil, fmt.Errorf("query removed dialogues: %w", err)
	}

	nums := make([]int, 0, len(rows))
	for _, row := range rows {
		if n, ok := row["number"].(int64); ok {
			nums = append(nums, int(n))
		}
	}
	return nums, nil
}
