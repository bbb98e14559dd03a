package demo

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/csviz/csviz/internal/api"
)

// maxHistory caps how many uploads the server keeps; older ones are
// purged on every insert.
const maxHistory = 5

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS users (
    username TEXT PRIMARY KEY,
    password TEXT NOT NULL,
    token    TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS datasets (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    uploaded_at TEXT NOT NULL,
    row_count   INTEGER NOT NULL,
    summary     TEXT NOT NULL,
    csv         BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_datasets_uploaded_at ON datasets(uploaded_at);
`

var (
	errUserExists = errors.New("username already taken")
	errBadLogin   = errors.New("bad credentials")
	errNotFound   = errors.New("dataset not found")
)

// Store persists demo users and datasets in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and initializes) the demo database at path.
// ":memory:" gives an ephemeral store for tests.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open demo db: %w", err)
	}
	// A fresh pool connection to ":memory:" would see a fresh empty
	// database, so keep everything on one connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create demo tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// CreateUser registers a user and mints their token.
func (s *Store) CreateUser(username, password string) (string, error) {
	token := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO users (username, password, token) VALUES (?, ?, ?)`,
		username, password, token,
	)
	if err != nil {
		return "", errUserExists
	}
	return token, nil
}

// Authenticate checks credentials and returns the user's token.
func (s *Store) Authenticate(username, password string) (string, error) {
	var token string
	err := s.db.QueryRow(
		`SELECT token FROM users WHERE username = ? AND password = ?`,
		username, password,
	).Scan(&token)
	if err != nil {
		return "", errBadLogin
	}
	return token, nil
}

// UserForToken resolves a token back to its username.
func (s *Store) UserForToken(token string) (string, bool) {
	var username string
	err := s.db.QueryRow(`SELECT username FROM users WHERE token = ?`, token).Scan(&username)
	return username, err == nil
}

// InsertDataset stores an upload and purges everything beyond the five
// most recent, mirroring the service's retention rule.
func (s *Store) InsertDataset(name string, rowCount int, summary api.Summary, csvData []byte) (*api.Dataset, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO datasets (name, uploaded_at, row_count, summary, csv) VALUES (?, ?, ?, ?, ?)`,
		name, now.Format(time.RFC3339Nano), rowCount, string(summaryJSON), csvData,
	)
	if err != nil {
		return nil, fmt.Errorf("insert dataset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`
		DELETE FROM datasets WHERE id NOT IN (
			SELECT id FROM datasets ORDER BY uploaded_at DESC, id DESC LIMIT ?
		)`, maxHistory)
	if err != nil {
		return nil, fmt.Errorf("prune datasets: %w", err)
	}

	return &api.Dataset{
		ID:         id,
		Name:       name,
		RowCount:   rowCount,
		UploadedAt: now,
		Summary:    summary,
	}, nil
}

// History returns the stored uploads, newest first.
func (s *Store) History() ([]api.HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, name, uploaded_at, row_count
		FROM datasets ORDER BY uploaded_at DESC, id DESC LIMIT ?`, maxHistory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []api.HistoryEntry
	for rows.Next() {
		var e api.HistoryEntry
		var uploadedAt string
		if err := rows.Scan(&e.ID, &e.Name, &uploadedAt, &e.RowCount); err != nil {
			return nil, err
		}
		e.UploadedAt, _ = time.Parse(time.RFC3339Nano, uploadedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Dataset loads one stored upload, including its raw CSV bytes.
func (s *Store) Dataset(id int64) (*api.Dataset, []byte, error) {
	var (
		ds          api.Dataset
		uploadedAt  string
		summaryJSON string
		csvData     []byte
	)
	err := s.db.QueryRow(`
		SELECT id, name, uploaded_at, row_count, summary, csv
		FROM datasets WHERE id = ?`, id).
		Scan(&ds.ID, &ds.Name, &uploadedAt, &ds.RowCount, &summaryJSON, &csvData)
	if err != nil {
		return nil, nil, errNotFound
	}
	ds.UploadedAt, _ = time.Parse(time.RFC3339Nano, uploadedAt)
	if err := json.Unmarshal([]byte(summaryJSON), &ds.Summary); err != nil {
		return nil, nil, err
	}
	return &ds, csvData, nil
}

// Delete removes one dataset; errNotFound when the id doesn't exist.
func (s *Store) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound
	}
	return nil
}
