package api

import "time"

// Summary holds the server-computed statistics for one dataset.
// Immutable once received.
type Summary struct {
	TotalCount       int                `json:"total_count"`
	Averages         map[string]float64 `json:"averages"`
	TypeDistribution map[string]int     `json:"type_distribution"`
}

// Dataset is the full upload record returned by POST /upload/.
type Dataset struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	RowCount   int       `json:"row_count"`
	UploadedAt time.Time `json:"uploaded_at"`
	Summary    Summary   `json:"summary"`
}

// HistoryEntry is the lightweight projection of a Dataset returned by
// GET /history/ (5 most recent, newest first).
type HistoryEntry struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	RowCount   int       `json:"row_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ChartData is the chart-ready projection of one dataset.
// Labels and Counts share length and order.
type ChartData struct {
	Labels   []string           `json:"labels"`
	Counts   []int              `json:"counts"`
	Averages map[string]float64 `json:"averages"`
	Rows     []map[string]any   `json:"rows"`
}
