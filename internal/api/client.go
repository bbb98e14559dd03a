// Package api is the typed gateway to the CSV Visualizer HTTP service.
// Every operation maps transport and HTTP failures to exactly one error
// from the taxonomy in errors.go before returning; no raw transport
// error crosses the package boundary. Auth-token rejections always map
// to ErrUnauthorized regardless of which call produced them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Client issues the service's network operations with a uniform
// auth-header contract. Not safe for concurrent token mutation; the
// controller only touches the token on transition boundaries.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a gateway for the given base URL, e.g.
// "http://localhost:8000/api". Timeouts are the transport's business:
// pass an *http.Client with one configured, or nil for the default.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// SetToken installs the auth token attached to all authorized calls.
// An empty token detaches it.
func (c *Client) SetToken(tok string) { c.token = tok }

// Token returns the currently installed auth token.
func (c *Client) Token() string { return c.token }

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// errorBody extracts the server's {"error": "..."} payload, if any.
func errorBody(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(body, &payload) == nil {
		return payload.Error
	}
	return ""
}

// Authenticate exchanges credentials for a token via POST /auth/token/.
// Any rejection maps to ErrInvalidCredentials: the UI shows one fixed
// message so the response never leaks which field was wrong.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	return c.obtainToken(ctx, "/auth/token/", map[string]string{
		"username": username,
		"password": password,
	}, func(*http.Response) error { return ErrInvalidCredentials })
}

// Register creates an account via POST /auth/register/ and returns its
// token. Email is optional and may be empty.
func (c *Client) Register(ctx context.Context, username, password, email string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	if email != "" {
		body["email"] = email
	}
	return c.obtainToken(ctx, "/auth/register/", body, func(resp *http.Response) error {
		reason := errorBody(resp)
		if reason == "" {
			reason = "Registration failed."
		}
		return &RegistrationError{Reason: reason}
	})
}

func (c *Client) obtainToken(ctx context.Context, path string, body map[string]string, reject func(*http.Response) error) (string, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &FetchError{Op: "auth", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", reject(resp)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &FetchError{Op: "auth", Err: err}
	}
	if out.Token == "" {
		return "", &FetchError{Op: "auth", Err: fmt.Errorf("empty token in response")}
	}
	return out.Token, nil
}

// doAuthed performs an authorized request and normalizes token
// rejections. The caller owns the response body on nil error.
func (c *Client) doAuthed(op string, req *http.Request) (*http.Response, error) {
	if c.token == "" {
		return nil, ErrUnauthorized
	}
	req.Header.Set("Authorization", "Token "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}
	return resp, nil
}

// History lists the most recent uploads (at most 5, newest first) via
// GET /history/. Callers treat failure as best-effort: the list simply
// stays unchanged.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/history/", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.doAuthed("history", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Op: "history", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	var entries []HistoryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, &FetchError{Op: "history", Err: err}
	}
	return entries, nil
}

// Upload sends a CSV via POST /upload/ (multipart field "file") and
// returns the created dataset including its computed summary.
func (c *Client) Upload(ctx context.Context, name string, csv io.Reader) (*Dataset, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, csv); err != nil {
		return nil, &UploadError{Reason: fmt.Sprintf("read %s: %v", name, err)}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload/", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.doAuthed("upload", req)
	if err != nil {
		if fe, ok := err.(*FetchError); ok {
			return nil, &UploadError{Reason: fe.Err.Error()}
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := errorBody(resp)
		if reason == "" {
			reason = "Upload failed."
		}
		return nil, &UploadError{Reason: reason}
	}
	var ds Dataset
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		return nil, &UploadError{Reason: fmt.Sprintf("bad response: %v", err)}
	}
	return &ds, nil
}

// ChartData fetches the chart-ready projection of one dataset via
// GET /chart-data/?id=. Failure is non-fatal to the rest of the
// workspace; the chart panel just stays empty.
func (c *Client) ChartData(ctx context.Context, id int64) (*ChartData, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/chart-data/?id=%d", id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.doAuthed("chart-data", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Op: "chart-data", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	var cd ChartData
	if err := json.NewDecoder(resp.Body).Decode(&cd); err != nil {
		return nil, &FetchError{Op: "chart-data", Err: err}
	}
	return &cd, nil
}

// Summary fetches the stored summary of one dataset via GET /summary/?id=.
// Used to refill the summary panel when a history entry is selected,
// since history entries do not embed one.
func (c *Client) Summary(ctx context.Context, id int64) (*Summary, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/summary/?id=%d", id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.doAuthed("summary", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Op: "summary", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	var s Summary
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, &FetchError{Op: "summary", Err: err}
	}
	return &s, nil
}

// Delete removes a dataset via DELETE /delete/<id>/.
func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/delete/%d/", id), nil)
	if err != nil {
		return err
	}
	resp, err := c.doAuthed("delete", req)
	if err != nil {
		if fe, ok := err.(*FetchError); ok {
			return &DeleteError{ID: id, Reason: fe.Err.Error()}
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeleteError{ID: id, Reason: errorBody(resp)}
	}
	return nil
}

// Report downloads the generated PDF for one dataset via
// GET /report/?id=.
func (c *Client) Report(ctx context.Context, id int64) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/report/?id=%d", id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.doAuthed("report", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Op: "report", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Op: "report", Err: err}
	}
	return pdf, nil
}
