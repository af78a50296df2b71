package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/relist-app/relist/internal/catalog"
)

// Store defines the persistence interface for the listing pipeline.
type Store interface {
	// Vision cache methods
	GetVisionCache(imageHash string) (*catalog.ImageAnalysis, error)
	SetVisionCache(imageHash string, analysis *catalog.ImageAnalysis) error

	// Batch result methods
	SaveResult(result *catalog.Result) error
	GetResult(requestID string) (*catalog.Result, error)
	ListResults(limit int) ([]ResultSummary, error)

	Close() error
}

// ResultSummary is a lightweight view of a stored batch result.
type ResultSummary struct {
	RequestID string    `json:"request_id"`
	Images    int       `json:"images"`
	Listings  int       `json:"listings"`
	Warning   string    `json:"warning,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and a busy timeout for better concurrency under the HTTP server
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	visionCacheQuery := `
	CREATE TABLE IF NOT EXISTS vision_cache (
		image_hash TEXT PRIMARY KEY,
		analysis TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(visionCacheQuery); err != nil {
		return fmt.Errorf("failed to create vision_cache table: %w", err)
	}

	resultsQuery := `
	CREATE TABLE IF NOT EXISTS results (
		request_id TEXT PRIMARY KEY,
		images INTEGER NOT NULL,
		listings INTEGER NOT NULL,
		warning TEXT,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(resultsQuery); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}

	return nil
}

// GetVisionCache retrieves a cached analysis by image hash.
// Returns nil, nil if no cache entry exists.
func (s *SQLiteStore) GetVisionCache(imageHash string) (*catalog.ImageAnalysis, error) {
	var payload string
	err := s.db.QueryRow(
		"SELECT analysis FROM vision_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vision cache: %w", err)
	}

	var analysis catalog.ImageAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached analysis: %w", err)
	}
	return &analysis, nil
}

// SetVisionCache stores an analysis in the cache, replacing any existing
// entry for the same hash.
func (s *SQLiteStore) SetVisionCache(imageHash string, analysis *catalog.ImageAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO vision_cache (image_hash, analysis)
		VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			analysis = excluded.analysis,
			created_at = CURRENT_TIMESTAMP
	`, imageHash, string(payload))

	if err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

// SaveResult persists a complete batch result.
func (s *SQLiteStore) SaveResult(result *catalog.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO results (request_id, images, listings, warning, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(request_id) DO UPDATE SET
			images = excluded.images,
			listings = excluded.listings,
			warning = excluded.warning,
			payload = excluded.payload
	`, result.RequestID, len(result.Analyses), len(result.Listings), result.Warning, string(payload))

	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// GetResult retrieves a stored batch result by request ID.
// Returns nil, nil if no such result exists.
func (s *SQLiteStore) GetResult(requestID string) (*catalog.Result, error) {
	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM results WHERE request_id = ?",
		requestID,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query result: %w", err)
	}

	var result catalog.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &result, nil
}

// ListResults returns summaries of the most recent batch results.
func (s *SQLiteStore) ListResults(limit int) ([]ResultSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		"SELECT request_id, images, listings, COALESCE(warning, ''), created_at FROM results ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var summaries []ResultSummary
	for rows.Next() {
		var s ResultSummary
		if err := rows.Scan(&s.RequestID, &s.Images, &s.Listings, &s.Warning, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
