package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/linkboard/internal/model"
)

// FileName is the name of the history database inside the database directory.
const FileName = "linkboard.db"

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB provides SQLite-based storage for checker runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so the dashboard can read while
	// an import is running.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Run is one stored checker run.
type Run struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	RecordedAt  time.Time `json:"recordedAt"`
	LastUpdated string    `json:"lastUpdated"`
	TotalURLs   int       `json:"totalUrls"`
	BrokenLinks int       `json:"brokenLinks"`
	SuccessRate float64   `json:"successRate"`
	ContentHash string    `json:"contentHash"`

	// ErrorDistribution is the label -> count map of the run.
	ErrorDistribution map[string]int `json:"errorDistribution,omitempty"`

	// Document is the raw Result Document. It is only populated by GetRunByID.
	Document []byte `json:"-"`
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run 'linkboard history import' first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		last_updated TEXT NOT NULL DEFAULT '',
		total_urls INTEGER NOT NULL DEFAULT 0,
		broken_links INTEGER NOT NULL DEFAULT 0,
		success_rate REAL NOT NULL DEFAULT 0,
		error_distribution TEXT,
		content_hash TEXT NOT NULL UNIQUE,
		document_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// ContentHash returns the hex SHA3-256 hash used to deduplicate documents.
func ContentHash(raw []byte) string {
	sum := sha3.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// SaveRun stores the run described by ds. raw is the Result Document exactly
// as it was read. When a document with the same content was stored before,
// SaveRun returns the existing ID and inserted is false.
func (h *HistoryDB) SaveRun(ctx context.Context, ds *model.Dataset, raw []byte) (id int64, inserted bool, err error) {
	if ds == nil {
		return 0, false, errors.New("dataset is nil")
	}
	if ds.Degraded {
		return 0, false, fmt.Errorf("refusing to store default data for %s: %s", ds.Source, ds.DegradedReason)
	}

	hash := ContentHash(raw)
	existing, err := h.runIDByHash(ctx, hash)
	if err != nil {
		return 0, false, err
	}
	if existing > 0 {
		return existing, false, nil
	}

	dist := make(map[string]int, len(ds.ErrorDistribution))
	for _, e := range ds.ErrorDistribution {
		dist[e.Label] = e.Count
	}
	distJSON, err := json.Marshal(dist)
	if err != nil {
		return 0, false, fmt.Errorf("failed to marshal error distribution: %w", err)
	}

	query := `
	INSERT INTO runs (source, recorded_at, last_updated, total_urls, broken_links,
		success_rate, error_distribution, content_hash, document_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	s := ds.Summary
	res, err := h.db.ExecContext(ctx, query,
		ds.Source,
		h.now().UTC().Format(time.RFC3339),
		s.LastUpdated,
		s.TotalURLs,
		s.BrokenLinks,
		s.SuccessRate,
		string(distJSON),
		hash,
		string(raw),
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to save run: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, true, nil
}

func (h *HistoryDB) runIDByHash(ctx context.Context, hash string) (int64, error) {
	var id int64
	err := h.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE content_hash = ?`, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up run: %w", err)
	}
	return id, nil
}

const runColumns = `id, source, recorded_at, last_updated, total_urls, broken_links, success_rate, error_distribution, content_hash`

// ListRuns returns every stored run, newest first.
func (h *HistoryDB) ListRuns(ctx context.Context) ([]Run, error) {
	return h.LatestRuns(ctx, 0)
}

// LatestRuns returns the n most recent runs, newest first. n <= 0 returns all runs.
func (h *HistoryDB) LatestRuns(ctx context.Context, n int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunByID retrieves a run and its raw document by ID.
func (h *HistoryDB) GetRunByID(ctx context.Context, id int64) (*Run, error) {
	query := `SELECT ` + runColumns + `, document_json FROM runs WHERE id = ?`

	var (
		run         Run
		recordedAt  string
		dist        sql.NullString
		documentRaw string
	)
	err := h.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Source, &recordedAt, &run.LastUpdated, &run.TotalURLs,
		&run.BrokenLinks, &run.SuccessRate, &dist, &run.ContentHash, &documentRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.RecordedAt = parseTimestamp(recordedAt)
	run.ErrorDistribution = decodeDistribution(dist)
	run.Document = []byte(documentRaw)
	return &run, nil
}

// DeleteRun removes a run. Deleting a missing run returns ErrRunNotFound.
func (h *HistoryDB) DeleteRun(ctx context.Context, id int64) error {
	res, err := h.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return nil
}

// TrendPoints returns up to limit trend points built from the most recent
// runs, oldest first. limit <= 0 returns every run.
func (h *HistoryDB) TrendPoints(ctx context.Context, limit int) ([]model.TrendPoint, error) {
	runs, err := h.LatestRuns(ctx, limit)
	if err != nil {
		return nil, err
	}

	points := make([]model.TrendPoint, 0, len(runs))
	for _, run := range runs {
		points = append(points, model.TrendPoint{
			Date:              run.trendDate(),
			BrokenLinks:       run.BrokenLinks,
			ErrorDistribution: run.ErrorDistribution,
			TotalURLs:         run.TotalURLs,
		})
	}
	slices.Reverse(points)
	return points, nil
}

// trendDate is the day of the checker run, or of the import when the run
// carries no parsable timestamp.
func (r Run) trendDate() string {
	if t, ok := model.ParseTimestamp(r.LastUpdated); ok {
		return t.UTC().Format(time.DateOnly)
	}
	return r.RecordedAt.UTC().Format(time.DateOnly)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run        Run
		recordedAt string
		dist       sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.Source, &recordedAt, &run.LastUpdated, &run.TotalURLs,
		&run.BrokenLinks, &run.SuccessRate, &dist, &run.ContentHash,
	); err != nil {
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.RecordedAt = parseTimestamp(recordedAt)
	run.ErrorDistribution = decodeDistribution(dist)
	return run, nil
}

func decodeDistribution(s sql.NullString) map[string]int {
	if !s.Valid || s.String == "" {
		return nil
	}
	var m map[string]int
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
