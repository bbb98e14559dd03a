// Package demo is a self-contained implementation of the CSV Visualizer
// API contract, backed by SQLite, for offline development and
// integration tests. `csviz demo` serves it; the TUI (or the original
// web client, CORS permitting) can point at it instead of a real
// deployment.
package demo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/csviz/csviz/internal/api"
)

// Server wires the demo handlers over a Store.
type Server struct {
	store *Store
}

// NewServer creates a demo server over an open store.
func NewServer(store *Store) *Server { return &Server{store: store} }

// Router builds the chi router implementing the API contract under /api.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token/", s.handleLogin)
		r.Post("/auth/register/", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/history/", s.handleHistory)
			r.Post("/upload/", s.handleUpload)
			r.Get("/summary/", s.handleSummary)
			r.Get("/chart-data/", s.handleChartData)
			r.Delete("/delete/{id}/", s.handleDelete)
			r.Get("/report/", s.handleReport)
		})
	})
	return r
}

// ListenAndServe runs the demo server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Router())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requireToken enforces the "Authorization: Token <key>" scheme.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Token "
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, prefix) {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		if _, ok := s.store.UserForToken(strings.TrimPrefix(h, prefix)); !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decodeCreds(r *http.Request) (username, password, email string, err error) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err = json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(body.Username), strings.TrimSpace(body.Password), strings.TrimSpace(body.Email), nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, _, err := decodeCreds(r)
	if err != nil || username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required.")
		return
	}
	token, err := s.store.Authenticate(username, password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unable to log in with provided credentials.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username, password, _, err := decodeCreds(r)
	if err != nil || username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required.")
		return
	}
	token, err := s.store.CreateUser(username, password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Username already taken.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token, "username": username})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.History()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if entries == nil {
		entries = []api.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	headers, rows, err := parseCSV(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Bad CSV: %v", err))
		return
	}
	summary := computeSummary(headers, rows)
	ds, err := s.store.InsertDataset(header.Filename, len(rows), summary, data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store failed")
		return
	}
	writeJSON(w, http.StatusCreated, ds)
}

func datasetID(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		return 0, errors.New("Missing id.")
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing id.")
		return
	}
	ds, _, err := s.store.Dataset(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, ds.Summary)
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing id.")
		return
	}
	ds, csvData, err := s.store.Dataset(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	_, rows, err := parseCSV(csvData)
	if err != nil {
		rows = nil
	}
	writeJSON(w, http.StatusOK, chartData(ds.Summary, rows))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing id.")
		return
	}
	if err := s.store.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := datasetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing id.")
		return
	}
	ds, _, err := s.store.Dataset(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	pdf := renderReport(ds)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("report_%d.pdf", ds.ID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
