// Package report renders the end-of-run summary.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mrsinham/dicomsort/internal/organizer"
)

var (
	headers = []string{"No.", "Patient", "Files", "Series", "Status"}
	// Minimum column widths; longer values widen their column
	widths = []int{6, 25, 10, 10, 15}
)

// RenderTable renders one left-aligned row per patient inside a +/-/| border
func RenderTable(patients []organizer.PatientResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleDefault)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, p := range patients {
		tw.AppendRow(table.Row{
			strconv.Itoa(p.Index),
			p.Name,
			strconv.Itoa(p.FileCount),
			strconv.Itoa(p.SeriesCount),
			string(p.Status),
		})
	}

	configs := make([]table.ColumnConfig, len(widths))
	for i, w := range widths {
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
			WidthMin:    w,
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// Print writes the report banner, the summary table, copy totals and the target root
func Print(w io.Writer, s *organizer.Summary) {
	banner := strings.Repeat("=", 30)
	fmt.Fprintf(w, "\n%s Processing Report %s\n", banner, banner)
	fmt.Fprintf(w, "\n%s\n\n", RenderTable(s.Patients))

	copied, skipped, n := s.Totals()
	fmt.Fprintf(w, "Copied %d files (%s), skipped %d already present\n", copied, humanize.Bytes(uint64(n)), skipped)

	target := s.TargetRoot
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}
	fmt.Fprintf(w, "Results saved in: %s\n", target)
}
