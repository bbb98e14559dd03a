package demo

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/csviz/csviz/internal/api"
)

// renderReport builds a minimal single-page PDF summarizing a dataset.
// It is enough for clients to save and open; the real service renders a
// much richer document.
func renderReport(ds *api.Dataset) []byte {
	lines := []string{
		"Equipment Data Report",
		"",
		fmt.Sprintf("File: %s", ds.Name),
		fmt.Sprintf("Uploaded: %s", ds.UploadedAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("Rows: %d", ds.RowCount),
		"",
	}
	if len(ds.Summary.Averages) > 0 {
		lines = append(lines, "Parameter Averages")
		for _, k := range sortedKeys(ds.Summary.Averages) {
			lines = append(lines, fmt.Sprintf("  %s: %.2f", k, ds.Summary.Averages[k]))
		}
		lines = append(lines, "")
	}
	if len(ds.Summary.TypeDistribution) > 0 {
		lines = append(lines, "Type Distribution")
		for _, k := range sortedKeys(ds.Summary.TypeDistribution) {
			lines = append(lines, fmt.Sprintf("  %s: %d", k, ds.Summary.TypeDistribution[k]))
		}
	}
	return buildPDF(lines)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildPDF emits a valid PDF 1.4 document with one page of Helvetica
// text lines.
func buildPDF(lines []string) []byte {
	var content strings.Builder
	content.WriteString("BT /F1 12 Tf 72 770 Td 16 TL\n")
	for _, line := range lines {
		content.WriteString(fmt.Sprintf("(%s) Tj T*\n", escapePDFText(line)))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func escapePDFText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
