package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mediaprobe/internal/logging"
	"mediaprobe/internal/probe"
	"mediaprobe/internal/units"
)

const lockRetryDelay = 25 * time.Millisecond

// Status values stored per probe.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Store manages probe history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Entry is one recorded probe.
type Entry struct {
	ID          int64
	RunID       string
	Path        string
	FormatName  string
	Streams     int
	Packets     int64
	PacketBytes int64
	Frames      int64
	// Duration is nil when the container duration was unknown.
	Duration  *time.Duration
	Status    string
	Error     string
	StartedAt time.Time
	Elapsed   time.Duration
}

// ListOptions filters List.
type ListOptions struct {
	Limit  int
	Status string
	RunID  string
}

// Open initializes or connects to the history database.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("open history: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path, lock: flock.New(path + ".lock")}
	if err := s.withLock(ctx, s.initSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) withLock(ctx context.Context, fn func(context.Context) error) error {
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock history: %s is busy", s.lock.Path())
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn(ctx)
}

// Record stores one probe outcome. The run identifier comes from ctx; a
// fresh one is generated when ctx has none.
func (s *Store) Record(ctx context.Context, outcome probe.Outcome) error {
	runID, ok := logging.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
	}
	status := StatusOK
	var errMessage any
	if outcome.Err != nil {
		status = StatusFailed
		errMessage = outcome.Err.Error()
	}
	var (
		formatName  any
		streams     int
		packets     int64
		packetBytes int64
		frames      int64
		duration    any
	)
	if c := outcome.Container; c != nil {
		formatName = nullableString(c.Format.Name)
		streams = len(c.Streams)
		packets = c.Packets
		packetBytes = c.PacketBytes
		frames = c.Frames
		if c.Format.Duration != units.NoTimestamp {
			duration = c.Format.Duration
		}
	}
	started := outcome.Started
	if started.IsZero() {
		started = time.Now()
	}

	return s.withLock(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO probes (
                run_id, path, format_name, nb_streams, packets, packet_bytes, frames,
                duration_us, status, error_message, started_at, elapsed_ms
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID,
			outcome.Path,
			formatName,
			streams,
			packets,
			packetBytes,
			frames,
			duration,
			status,
			errMessage,
			started.UTC().Format(time.RFC3339Nano),
			outcome.Elapsed.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert probe: %w", err)
		}
		return nil
	})
}

const entryColumns = `id, run_id, path, format_name, nb_streams, packets, packet_bytes, frames,
    duration_us, status, error_message, started_at, elapsed_ms`

// List returns recorded probes, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM probes`
	var (
		where []string
		args  []any
	)
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, opts.RunID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list probes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan probe: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate probes: %w", err)
	}
	return entries, nil
}

// Get returns one probe, or nil when id is unknown.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM probes WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get probe: %w", err)
	}
	return entry, nil
}

// Clear deletes every recorded probe and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := s.withLock(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM probes`)
		if err != nil {
			return fmt.Errorf("clear probes: %w", err)
		}
		removed, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	return removed, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry      Entry
		formatName sql.NullString
		duration   sql.NullInt64
		errMessage sql.NullString
		startedAt  string
		elapsedMS  int64
	)
	if err := row.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.Path,
		&formatName,
		&entry.Streams,
		&entry.Packets,
		&entry.PacketBytes,
		&entry.Frames,
		&duration,
		&entry.Status,
		&errMessage,
		&startedAt,
		&elapsedMS,
	); err != nil {
		return nil, err
	}
	entry.FormatName = formatName.String
	entry.Error = errMessage.String
	if duration.Valid {
		d := time.Duration(duration.Int64) * time.Microsecond
		entry.Duration = &d
	}
	if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		entry.StartedAt = ts
	}
	entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return &entry, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
