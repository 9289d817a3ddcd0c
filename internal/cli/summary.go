package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// stepRow is one line of the final summary.
type stepRow struct {
	Step     string
	Scanned  int
	Modified int
	Removed  int
	NotFound int
	Skipped  int
	Failed   int
}

// summary accumulates outcomes across the steps of one command.
type summary struct {
	steps    []stepRow
	variants map[string]int
	notFound []string
	failed   []string
	logs     []string
	unparsed int
	// undelimited counts "12.[tag]" lines no tag pass could read.
	undelimited int
}

func newSummary() *summary {
	return &summary{variants: make(map[string]int)}
}

func (s *summary) add(row stepRow) { s.steps = append(s.steps, row) }

func (s *summary) failures() int {
	n := 0
	for _, r := range s.steps {
		n += r.Failed
	}
	return n
}

// render writes the summary tables. Nothing is written for an empty summary.
func (s *summary) render(w io.Writer) {
	if len(s.steps) == 0 {
		return
	}

	rows := make([][]string, 0, len(s.steps))
	for _, r := range s.steps {
		rows = append(rows, []string{
			r.Step,
			strconv.Itoa(r.Scanned),
			strconv.Itoa(r.Modified),
			strconv.Itoa(r.Removed),
			strconv.Itoa(r.NotFound),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Step", "Scanned", "Modified", "Removed", "Not found", "Skipped", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if len(s.variants) > 0 {
		folders := make([]string, 0, len(s.variants))
		for f := range s.variants {
			folders = append(folders, f)
		}
		sort.Strings(folders)
		vrows := make([][]string, 0, len(folders))
		for _, f := range folders {
			vrows = append(vrows, []string{f, strconv.Itoa(s.variants[f])})
		}
		fmt.Fprintln(w, renderTable([]string{"Variant", "Propagated"}, vrows, []columnAlignment{alignLeft, alignRight}))
	}

	if s.unparsed > 0 {
		fmt.Fprintf(w, "Unparsed removal log lines: %d\n", s.unparsed)
	}
	if s.undelimited > 0 {
		fmt.Fprintf(w, "Undelimited numbered lines (\"12.[tag]\"): %d\n", s.undelimited)
	}
	for _, nf := range s.notFound {
		fmt.Fprintf(w, "Not found: %s\n", nf)
	}
	for _, f := range s.failed {
		fmt.Fprintf(w, "Failed: %s\n", f)
	}
	for _, l := range s.logs {
		fmt.Fprintf(w, "Log: %s\n", l)
	}
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
