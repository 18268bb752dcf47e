package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yeldaryernazarov/NestVision/internal/category"
	"github.com/yeldaryernazarov/NestVision/internal/config"
)

// ErrDuplicate reports an insert rejected by the source_file_id uniqueness
// constraint.
var ErrDuplicate = errors.New("catalog: duplicate source file id")

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the catalog database location.
func (s *Store) Path() string {
	return s.path
}

// Insert persists a new record and returns it with the assigned id and
// UploadedAt set. A source_file_id collision surfaces as ErrDuplicate.
func (s *Store) Insert(ctx context.Context, record *VideoRecord) (*VideoRecord, error) {
	if record == nil {
		return nil, errors.New("record is nil")
	}
	if !record.Category.Valid() {
		return nil, fmt.Errorf("invalid category %q", record.Category)
	}
	if strings.TrimSpace(record.FileName) == "" {
		return nil, errors.New("file name is required")
	}
	if strings.TrimSpace(record.FilePath) == "" {
		return nil, errors.New("file path is required")
	}

	uploadedAt := time.Now()
	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = uploadedAt
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO videos (
            file_name, file_path, category, recorded_at, uploaded_at,
            duration_seconds, size_bytes, source_file_id, source_message_id
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.FileName,
		record.FilePath,
		string(record.Category),
		recordedAt.UTC().Format(time.RFC3339Nano),
		uploadedAt.UTC().Format(time.RFC3339Nano),
		nullableInt64(record.DurationSeconds),
		nullableInt64(record.SizeBytes),
		nullableString(record.SourceFileID),
		nullableInt64(record.SourceMessageID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, record.SourceFileID)
		}
		return nil, fmt.Errorf("insert video: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a record by identifier, nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*VideoRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return record, nil
}

// List returns all records ordered by recording time, newest first.
func (s *Store) List(ctx context.Context) ([]*VideoRecord, error) {
	return s.query(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY recorded_at DESC, id DESC`)
}

// ListByCategory returns records in one category, newest first.
func (s *Store) ListByCategory(ctx context.Context, cat category.Category) ([]*VideoRecord, error) {
	return s.query(ctx, `SELECT `+videoColumns+` FROM videos WHERE category = ? ORDER BY recorded_at DESC, id DESC`, string(cat))
}

// Stats returns record counts grouped by category.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(1) FROM videos GROUP BY category`)
	if err != nil {
		return Stats{}, fmt.Errorf("catalog stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByCategory: make(map[category.Category]int)}
	for rows.Next() {
		var cat string
		var count int
		if err := rows.Scan(&cat, &count); err != nil {
			return Stats{}, err
		}
		stats.ByCategory[category.Category(cat)] = count
		stats.Total += count
	}
	return stats, rows.Err()
}

// CheckHealth verifies the database file responds to queries.
func (s *Store) CheckHealth(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("catalog database connection unavailable")
	}
	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(connCtx); err != nil {
		return fmt.Errorf("ping catalog database: %w", err)
	}
	var name string
	row := s.db.QueryRowContext(connCtx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'videos'`)
	if err := row.Scan(&name); err != nil {
		return fmt.Errorf("videos table missing: %w", err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*VideoRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var records []*VideoRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

const videoColumns = "id, file_name, file_path, category, recorded_at, uploaded_at, duration_seconds, size_bytes, source_file_id, source_message_id"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*VideoRecord, error) {
	var (
		id          int64
		fileName    string
		filePath    string
		cat         string
		recordedRaw string
		uploadedRaw string
		duration    sql.NullInt64
		size        sql.NullInt64
		fileID      sql.NullString
		messageID   sql.NullInt64
	)

	if err := scanner.Scan(
		&id,
		&fileName,
		&filePath,
		&cat,
		&recordedRaw,
		&uploadedRaw,
		&duration,
		&size,
		&fileID,
		&messageID,
	); err != nil {
		return nil, err
	}

	record := &VideoRecord{
		ID:           id,
		FileName:     fileName,
		FilePath:     filePath,
		Category:     category.Category(cat),
		SourceFileID: fileID.String,
	}
	if duration.Valid {
		record.DurationSeconds = &duration.Int64
	}
	if size.Valid {
		record.SizeBytes = &size.Int64
	}
	if messageID.Valid {
		record.SourceMessageID = &messageID.Int64
	}
	if recorded, err := parseTimeString(recordedRaw); err == nil {
		record.RecordedAt = recorded.Local()
	}
	if uploaded, err := parseTimeString(uploadedRaw); err == nil {
		record.UploadedAt = uploaded.Local()
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// isUniqueViolation matches the sqlite driver's unique-index error text.
// Other constraint classes (NOT NULL, CHECK) are real faults, not duplicates,
// and must not be mistaken for ErrDuplicate.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
