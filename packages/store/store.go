// Package store persists captured requests and responses in SQLite and
// serves them back to the extractor.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/resptag/packages/http"
	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	method     TEXT NOT NULL,
	url        TEXT NOT NULL,
	headers    TEXT NOT NULL DEFAULT '[]',
	body       TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS responses (
	id           TEXT PRIMARY KEY,
	request_id   TEXT NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
	status_code  INTEGER NOT NULL,
	status       TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL DEFAULT '',
	headers      TEXT NOT NULL DEFAULT '[]',
	body         BLOB,
	duration_ms  INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_request ON responses(request_id, created_at);
`

// Summary is a stored request with its latest response status.
type Summary struct {
	Request      *http.Request
	LatestStatus int
	Responses    int
}

// Store is a SQLite-backed request/response store.
type Store struct {
	db           *sql.DB
	path         string
	queryTimeout time.Duration
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open opens (creating if needed) the store at connStr, which is either a
// file path or a sqlite:// / sqlite: URL.
func Open(connStr string) (*Store, error) {
	path, err := parseConnectionString(connStr)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	return &Store{
		db:           db,
		path:         path,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRequest stores req, assigning an ID and creation time when missing.
// Saving an existing ID updates the request and keeps its responses.
func (s *Store) SaveRequest(ctx context.Context, req *http.Request) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return insertRequest(ctx, s.db, req)
}

// SaveResponse stores resp for an existing request.
func (s *Store) SaveResponse(ctx context.Context, resp *http.Response) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return insertResponse(ctx, s.db, resp)
}

// SaveExchange stores a request and its response in one transaction.
func (s *Store) SaveExchange(ctx context.Context, req *http.Request, resp *http.Response) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertRequest(ctx, tx, req); err != nil {
		return err
	}
	resp.RequestID = req.ID
	if err := insertResponse(ctx, tx, resp); err != nil {
		return err
	}
	return tx.Commit()
}

// RequestByID returns the request with id, or nil when there is none.
func (s *Store) RequestByID(ctx context.Context, id string) (*http.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, method, url, headers, body, created_at FROM requests WHERE id = ?`, id)

	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request %s: %w", id, err)
	}
	return req, nil
}

// LatestResponse returns the newest response recorded for requestID, or nil
// when there is none. The body is not loaded; use ResponseBody.
func (s *Store) LatestResponse(ctx context.Context, requestID string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, request_id, status_code, status, content_type, headers, duration_ms, created_at
		FROM responses
		WHERE request_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`, requestID)

	var (
		resp       http.Response
		headers    string
		durationMs int64
		createdAt  int64
	)
	err := row.Scan(&resp.ID, &resp.RequestID, &resp.StatusCode, &resp.Status,
		&resp.ContentType, &headers, &durationMs, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load response for %s: %w", requestID, err)
	}

	if err := json.Unmarshal([]byte(headers), &resp.Headers); err != nil {
		return nil, fmt.Errorf("failed to decode headers of response %s: %w", resp.ID, err)
	}
	resp.Duration = time.Duration(durationMs) * time.Millisecond
	resp.CreatedAt = time.Unix(0, createdAt)
	return &resp, nil
}

// ResponseBody returns the raw body bytes of a stored response.
func (s *Store) ResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	if resp.Body != nil {
		return resp.Body, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM responses WHERE id = ?`, resp.ID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("response %s not found", resp.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load body of response %s: %w", resp.ID, err)
	}
	return body, nil
}

// ListRequests returns all requests, newest first, with their latest status.
func (s *Store) ListRequests(ctx context.Context) ([]Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.method, r.url, r.headers, r.body, r.created_at,
			(SELECT COUNT(*) FROM responses WHERE request_id = r.id),
			COALESCE((SELECT status_code FROM responses WHERE request_id = r.id
				ORDER BY created_at DESC, rowid DESC LIMIT 1), 0)
		FROM requests r
		ORDER BY r.created_at DESC, r.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			sum       Summary
			req       http.Request
			headers   string
			createdAt int64
		)
		if err := rows.Scan(&req.ID, &req.Name, &req.Method, &req.URL, &headers, &req.Body,
			&createdAt, &sum.Responses, &sum.LatestStatus); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(headers), &req.Headers); err != nil {
			return nil, fmt.Errorf("failed to decode headers of request %s: %w", req.ID, err)
		}
		req.CreatedAt = time.Unix(0, createdAt)
		sum.Request = &req
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return summaries, nil
}

func insertRequest(ctx context.Context, db execer, req *http.Request) error {
	if req.ID == "" {
		req.ID = NewRequestID()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	headers, err := encodeHeaders(req.Headers)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO requests (id, name, method, url, headers, body, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, method = excluded.method, url = excluded.url,
		 headers = excluded.headers, body = excluded.body`,
		req.ID, req.Name, req.Method, req.URL, headers, req.Body, req.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func insertResponse(ctx context.Context, db execer, resp *http.Response) error {
	if resp.RequestID == "" {
		return fmt.Errorf("response has no request id")
	}
	if resp.ID == "" {
		resp.ID = NewResponseID()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now()
	}

	headers, err := encodeHeaders(resp.Headers)
	if err != nil {
		return err
	}

	body := resp.Body
	if body == nil {
		body = []byte{}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO responses (id, request_id, status_code, status, content_type, headers, body, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resp.ID, resp.RequestID, resp.StatusCode, resp.Status, resp.ContentType, headers, body,
		resp.DurationMs(), resp.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}

func scanRequest(row *sql.Row) (*http.Request, error) {
	var (
		req       http.Request
		headers   string
		createdAt int64
	)
	if err := row.Scan(&req.ID, &req.Name, &req.Method, &req.URL, &headers, &req.Body, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(headers), &req.Headers); err != nil {
		return nil, fmt.Errorf("failed to decode headers: %w", err)
	}
	req.CreatedAt = time.Unix(0, createdAt)
	return &req, nil
}

func encodeHeaders(headers []http.Header) (string, error) {
	if headers == nil {
		headers = []http.Header{}
	}
	data, err := json.Marshal(headers)
	if err != nil {
		return "", fmt.Errorf("failed to encode headers: %w", err)
	}
	return string(data), nil
}

// NewRequestID returns a fresh request identifier.
func NewRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewResponseID returns a fresh response identifier.
func NewResponseID() string {
	return "res_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// parseConnectionString extracts the database path.
// Supported formats:
// - sqlite://path/to/db.sqlite
// - sqlite:./test.db
// - path/to/db.sqlite
func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)

	switch {
	case strings.HasPrefix(connStr, "sqlite://"):
		connStr = strings.TrimPrefix(connStr, "sqlite://")
	case strings.HasPrefix(connStr, "sqlite:"):
		connStr = strings.TrimPrefix(connStr, "sqlite:")
	case strings.Contains(connStr, "://"):
		scheme, _, _ := strings.Cut(connStr, "://")
		return "", fmt.Errorf("unsupported database scheme: %s", scheme)
	}

	if connStr == "" {
		return "", fmt.Errorf("database path is empty")
	}
	return connStr, nil
}
