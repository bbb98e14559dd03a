package demo

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/csviz/csviz/internal/api"
)

// parseCSV reads the uploaded bytes into a header slice and row maps,
// trimming whitespace from headers the way the real service does.
func parseCSV(data []byte) ([]string, []map[string]any, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty CSV")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = h
	}

	rows := make([]map[string]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]any, len(headers))
		for i, h := range headers {
			val := ""
			if i < len(rec) {
				val = strings.TrimSpace(rec[i])
			}
			if f, err := strconv.ParseFloat(val, 64); err == nil && val != "" {
				row[h] = f
			} else {
				row[h] = val
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// computeSummary derives per-column numeric averages and the category
// distribution over the "Type" column.
func computeSummary(headers []string, rows []map[string]any) api.Summary {
	s := api.Summary{
		TotalCount:       len(rows),
		Averages:         map[string]float64{},
		TypeDistribution: map[string]int{},
	}

	for _, h := range headers {
		var sum float64
		var n int
		for _, row := range rows {
			if f, ok := row[h].(float64); ok {
				sum += f
				n++
			}
		}
		if n > 0 {
			s.Averages[h] = math.Round(sum/float64(n)*100) / 100
		}
	}

	for _, h := range headers {
		if strings.EqualFold(h, "Type") {
			for _, row := range rows {
				if label, ok := row[h].(string); ok && label != "" {
					s.TypeDistribution[label]++
				}
			}
			break
		}
	}
	return s
}

// chartData projects a stored summary and its rows into the chart wire
// shape. Labels are ordered most-frequent first, ties by name, so the
// output is deterministic.
func chartData(s api.Summary, rows []map[string]any) api.ChartData {
	labels := make([]string, 0, len(s.TypeDistribution))
	for label := range s.TypeDistribution {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := labels[i], labels[j]
		if s.TypeDistribution[a] != s.TypeDistribution[b] {
			return s.TypeDistribution[a] > s.TypeDistribution[b]
		}
		return a < b
	})

	counts := make([]int, len(labels))
	for i, label := range labels {
		counts[i] = s.TypeDistribution[label]
	}
	return api.ChartData{
		Labels:   labels,
		Counts:   counts,
		Averages: s.Averages,
		Rows:     rows,
	}
}
