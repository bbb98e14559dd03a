package tui

import (
	"strings"
	"testing"

	"github.com/csviz/csviz/internal/api"
)

func TestRenderSummary(t *testing.T) {
	th := newTheme(false)

	if out := renderSummary(api.Summary{}, th); out != "" {
		t.Errorf("empty summary rendered %q", out)
	}

	s := api.Summary{
		TotalCount: 4,
		Averages:   map[string]float64{"Temperature": 25, "Pressure": 113.33},
	}
	out := renderSummary(s, th)
	if !strings.Contains(out, "Temperature") || !strings.Contains(out, "25.00") {
		t.Errorf("summary missing averages:\n%s", out)
	}
	// Alphabetical: Pressure before Temperature.
	if strings.Index(out, "Pressure") > strings.Index(out, "Temperature") {
		t.Error("averages not sorted by name")
	}
}

func TestRenderBarChartScaling(t *testing.T) {
	th := newTheme(false)
	cd := &api.ChartData{
		Labels: []string{"Pump", "Valve"},
		Counts: []int{4, 1},
	}

	out := renderBarChart(cd, th)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines:\n%s", out)
	}
	pump := strings.Count(lines[1], "█")
	valve := strings.Count(lines[2], "█")
	if pump != maxBarWidth {
		t.Errorf("largest bar = %d, want %d", pump, maxBarWidth)
	}
	if valve != maxBarWidth/4 {
		t.Errorf("small bar = %d", valve)
	}
	if !strings.HasSuffix(lines[1], " 4") || !strings.HasSuffix(lines[2], " 1") {
		t.Errorf("counts missing:\n%s", out)
	}
}

func TestRenderBarChartNonzeroBarsVisible(t *testing.T) {
	th := newTheme(false)
	cd := &api.ChartData{
		Labels: []string{"Pump", "Valve"},
		Counts: []int{100, 1},
	}
	out := renderBarChart(cd, th)
	for _, line := range strings.Split(out, "\n")[1:] {
		if !strings.Contains(line, "█") {
			t.Errorf("bar collapsed to nothing: %q", line)
		}
	}
}

func TestRenderBarChartEmpty(t *testing.T) {
	th := newTheme(false)
	if out := renderBarChart(&api.ChartData{}, th); out != "" {
		t.Errorf("empty chart rendered %q", out)
	}
}

func TestRenderRowsTableTruncation(t *testing.T) {
	th := newTheme(false)
	rows := make([]map[string]any, 8)
	for i := range rows {
		rows[i] = map[string]any{"Type": "Pump", "Reading": float64(i)}
	}

	out := renderRowsTable(rows, th, 5)
	if !strings.Contains(out, "… +3 rows") {
		t.Errorf("overflow marker missing:\n%s", out)
	}
	if got := strings.Count(out, "Pump"); got != 5 {
		t.Errorf("rendered %d rows, want 5", got)
	}
}

func TestCellString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Pump", "Pump"},
		{float64(10), "10"},
		{10.5, "10.50"},
		{true, "true"},
	}
	for _, c := range cases {
		if got := cellString(c.in); got != c.want {
			t.Errorf("cellString(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
