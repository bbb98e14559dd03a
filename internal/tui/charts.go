package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/csviz/csviz/internal/api"
)

const maxBarWidth = 28

// renderSummary renders the averages block of a dataset summary.
// An empty summary renders as nothing; a dataset selected from history
// looks like this until its summary fetch lands.
func renderSummary(s api.Summary, th theme) string {
	if len(s.Averages) == 0 && s.TotalCount == 0 {
		return ""
	}
	var lines []string
	lines = append(lines, th.label.Render("Averages"))
	keys := make([]string, 0, len(s.Averages))
	for k := range s.Averages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, th.value.Render(fmt.Sprintf("  %-14s %.2f", k, s.Averages[k])))
	}
	return strings.Join(lines, "\n")
}

// renderBarChart draws the type distribution as horizontal bars, one
// row per label, scaled to the largest count.
func renderBarChart(cd *api.ChartData, th theme) string {
	if len(cd.Labels) == 0 {
		return ""
	}
	maxCount := 0
	labelWidth := 0
	for i, label := range cd.Labels {
		if i < len(cd.Counts) && cd.Counts[i] > maxCount {
			maxCount = cd.Counts[i]
		}
		if len(label) > labelWidth {
			labelWidth = len(label)
		}
	}
	if maxCount == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, th.label.Render("Type Distribution"))
	for i, label := range cd.Labels {
		if i >= len(cd.Counts) {
			break
		}
		n := cd.Counts[i]
		w := n * maxBarWidth / maxCount
		if w == 0 && n > 0 {
			w = 1
		}
		lines = append(lines, fmt.Sprintf("%-*s %s %d",
			labelWidth, label, th.bar.Render(strings.Repeat("█", w)), n))
	}
	return strings.Join(lines, "\n")
}

// renderRowsTable renders up to maxRows data rows as a fixed-width
// table. Column order is alphabetical since the wire format is a map.
func renderRowsTable(rows []map[string]any, th theme, maxRows int) string {
	if len(rows) == 0 {
		return ""
	}

	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	if len(cols) > 6 {
		cols = cols[:6]
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	shown := rows
	if len(shown) > maxRows {
		shown = shown[:maxRows]
	}
	cells := make([][]string, len(shown))
	for r, row := range shown {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			cells[r][i] = cellString(row[c])
			if len(cells[r][i]) > widths[i] {
				widths[i] = len(cells[r][i])
			}
		}
	}

	var b strings.Builder
	b.WriteString(th.label.Render("Rows"))
	b.WriteString("\n")
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = fmt.Sprintf("%-*s", widths[i], c)
	}
	b.WriteString(th.selected.Render(strings.Join(header, "  ")))
	for _, row := range cells {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		b.WriteString("\n" + th.value.Render(strings.Join(padded, "  ")))
	}
	if len(rows) > maxRows {
		b.WriteString("\n" + th.hint.Render(fmt.Sprintf("… +%d rows", len(rows)-maxRows)))
	}
	return b.String()
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.2f", t)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
