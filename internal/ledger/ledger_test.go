package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsync/internal/removallog"
	"tagsync/internal/tags"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestStore_EnsureSchema(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS tag_removals`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, NewStore(mock).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Append(t *testing.T) {
	first := removallog.Record{Position: tags.End, Dialogue: 12, Path: "/c/english_1/a_lines_numbered.txt", FileLine: 33, Tag: "pause", Before: "12. Hi [pause]", After: "12. Hi"}
	second := removallog.Record{Position: tags.Start, Dialogue: 3, Path: "/c/french_1/a_lines.txt", FileLine: 3, Tag: "nodding"}

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		want    int
		wantErr bool
		records []removallog.Record
	}{
		{
			name: "new and duplicate records",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO tag_removals`).
					WithArgs(RecordHash(first), "run-1", "end", 12, first.Path, 33, "pause", first.Before, first.After).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectExec(`INSERT INTO tag_removals`).
					WithArgs(pgxmock.AnyArg(), "run-1", "start", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
			},
			records: []removallog.Record{first, second},
			want:    1,
		},
		{
			name: "insert failure",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO tag_removals`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(errors.New("connection reset"))
			},
			records: []removallog.Record{first, second},
			want:    0,
			wantErr: true,
		},
		{
			name:    "nothing to append",
			setup:   func(mock pgxmock.PgxPoolIface) {},
			records: nil,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)

			got, err := NewStore(mock).Append(context.Background(), "run-1", tt.records)
			if tt.wantErr {
				assert.ErrorContains(t, err, "insert removal")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRecordHash(t *testing.T) {
	r := removallog.Record{Position: tags.End, Dialogue: 12, Path: "/c/a.txt", FileLine: 33, Tag: "pause"}
	assert.Equal(t, RecordHash(r), RecordHash(r))

	moved := r
	moved.FileLine = 34
	assert.NotEqual(t, RecordHash(r), RecordHash(moved))
}

func TestStore_ListRun(t *testing.T) {
	mock := newMock(t)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"run_id", "position", "dialogue", "file_path", "file_line", "tag", "before_text", "after_text", "created_at"}).
		AddRow("run-1", "end", 12, "/c/english_1/a_lines_numbered.txt", 33, "pause", "12. Hi [pause]", "12. Hi", now).
		AddRow("run-1", "start", 3, "/c/french_1/a_lines.txt", 3, "nodding", "", "", now)
	mock.ExpectQuery(`SELECT run_id, position`).
		WithArgs("run-1").
		WillReturnRows(rows)

	entries, err := NewStore(mock).ListRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "pause", entries[0].Tag)
	assert.Equal(t, now, entries[0].CreatedAt)
	assert.Equal(t, removallog.Record{
		Position: tags.Start,
		Dialogue: 3,
		Path:     "/c/french_1/a_lines.txt",
		FileLine: 3,
		Tag:      "nodding",
	}, entries[1].Record())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListAll_QueryError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT run_id, position`).WillReturnError(errors.New("boom"))

	_, err := NewStore(mock).ListAll(context.Background())
	assert.ErrorContains(t, err, "query removals")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "removals.tsv")
	entries := []Entry{{
		RunID:    "run-1",
		Position: "end",
		Dialogue: 12,
		Path:     "/c/a.txt",
		FileLine: 33,
		Tag:      "pause",
		Before:   "12. Hi\t[pause]",
		After:    "12. Hi",
	}}

	require.NoError(t, ExportTSV(entries, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "run_id\tposition\tdialogue\tfile_path\tfile_line\ttag\tbefore\tafter", lines[0])
	assert.Equal(t, "run-1\tend\t12\t/c/a.txt\t33\tpause\t12. Hi\\t[pause]\t12. Hi", lines[1])
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "removals.json")
	require.NoError(t, ExportJSON(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	entries := []Entry{{RunID: "run-1", Position: "start", Dialogue: 3, Tag: "<nodding>"}}
	require.NoError(t, ExportJSON(entries, path))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tag": "<nodding>"`)

	var decoded []Entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded[0].RunID)
}
