package tui

import "github.com/csviz/csviz/internal/sheet"

// readUpload resolves a local path into upload-ready CSV bytes,
// converting spreadsheets on the way. Split out so tests can cover the
// upload command without a terminal.
func readUpload(path string) (string, []byte, error) {
	return sheet.CSVFromFile(path)
}
