package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_analysis_store.go -package=mocks cbc-rag/internal/storage AnalysisStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// SourceRef identifies one knowledge chunk cited by an analysis.
type SourceRef struct {
	ChunkID string  `json:"chunk_id"`
	Section string  `json:"section"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
}

// AnalysisRecord is one completed analysis run.
type AnalysisRecord struct {
	ID        string      `json:"id"`
	Query     string      `json:"query"`
	Method    string      `json:"method"`
	Degraded  bool        `json:"degraded"`
	Answer    string      `json:"answer"`
	Sources   []SourceRef `json:"sources"`
	CreatedAt time.Time   `json:"created_at"`
}

// AnalysisStore defines the interface for analysis history operations.
type AnalysisStore interface {
	// Insert stores a new analysis record, generating its ID when empty.
	Insert(ctx context.Context, rec *AnalysisRecord) error
	// GetByID gets an analysis by ID. Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*AnalysisRecord, error)
	// ListRecent returns the most recent analyses, newest first.
	ListRecent(ctx context.Context, limit int) ([]*AnalysisRecord, error)
}

// AnalysisRepo provides methods for analysis history operations.
// It implements the AnalysisStore interface.
type AnalysisRepo struct {
	db *sql.DB
}

// NewAnalysisRepo creates a new AnalysisRepo.
func NewAnalysisRepo(db *sql.DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

// Insert stores a new analysis record, generating its ID when empty.
func (r *AnalysisRepo) Insert(ctx context.Context, rec *AnalysisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return fmt.Errorf("failed to encode sources: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO analyses (id, query, method, degraded, answer, sources, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		rec.ID, rec.Query, rec.Method, boolToInt(rec.Degraded), rec.Answer, string(sources),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	return nil
}

// GetByID gets an analysis by ID. Returns nil and ErrNotFound if not found.
func (r *AnalysisRepo) GetByID(ctx context.Context, id string) (*AnalysisRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, query, method, degraded, answer, sources, created_at FROM analyses WHERE id = ?",
		id,
	)

	rec, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}

	return rec, nil
}

// ListRecent returns the most recent analyses, newest first.
func (r *AnalysisRepo) ListRecent(ctx context.Context, limit int) ([]*AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, query, method, degraded, answer, sources, created_at FROM analyses ORDER BY created_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*AnalysisRecord, 0, limit)
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	var degraded int
	var sourcesJSON string
	var createdAtStr string

	err := row.Scan(&rec.ID, &rec.Query, &rec.Method, &degraded, &rec.Answer, &sourcesJSON, &createdAtStr)
	if err != nil {
		return nil, err
	}

	rec.Degraded = degraded != 0

	if err := json.Unmarshal([]byte(sourcesJSON), &rec.Sources); err != nil {
		return nil, fmt.Errorf("failed to decode sources: %w", err)
	}

	// Parse created_at DATETIME string
	rec.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
	if err != nil {
		// Try alternative format (SQLite might use different format)
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
	}

	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
