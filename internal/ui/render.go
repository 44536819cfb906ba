package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Money formats an amount with the configured currency symbol.
func Money(symbol string, amount float64) string {
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

// RenderTable writes rows in aligned columns.
func RenderTable(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// RenderSummary prints label/value pairs, one per line.
func RenderSummary(w io.Writer, pairs [][2]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, pair := range pairs {
		fmt.Fprintf(tw, "%s:\t%s\n", pair[0], pair[1])
	}
	tw.Flush()
}

// SaveBlob writes a downloaded blob to disk and drops the buffer; the
// caller must not retain data afterwards.
func SaveBlob(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save download: %w", err)
	}
	return nil
}
