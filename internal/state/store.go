// Package state provides the durable store for paused-download resume records
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"langpack-manager/pkg/models"

	_ "modernc.org/sqlite"
)

// ErrLegacyRecord is returned when a legacy pipe-encoded record cannot be
// migrated because it predates the partial-file-path field. Such records
// are not resumable and are rejected rather than guessed at.
var ErrLegacyRecord = errors.New("legacy resume record without partial path")

// legacyKeyPrefix is the key prefix the old preference-style store used for
// its pipe-encoded records.
const legacyKeyPrefix = "download_"

// Store wraps the SQLite connection holding resume records.
type Store struct {
	conn *sql.DB
}

// New opens the store at dbPath and initializes the schema. Use ":memory:"
// for tests.
func New(dbPath string) (*Store, error) {
	connString := dbPath
	if dbPath != ":memory:" {
		connString = dbPath + "?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL"
	}

	conn, err := sql.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	store := &Store{conn: conn}

	if err := store.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resume_state (
		pack_id TEXT PRIMARY KEY,
		source_url TEXT NOT NULL,
		downloaded_bytes INTEGER NOT NULL DEFAULT 0,
		total_bytes INTEGER NOT NULL DEFAULT 0,
		partial_path TEXT NOT NULL,
		schema_version INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// Save creates or replaces the resume record for a pack.
func (s *Store) Save(state *models.ResumeState) error {
	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.UpdatedAt = now
	state.SchemaVersion = models.ResumeSchemaVersion

	query := `
	INSERT INTO resume_state (
		pack_id, source_url, downloaded_bytes, total_bytes,
		partial_path, schema_version, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(pack_id) DO UPDATE SET
		source_url = excluded.source_url,
		downloaded_bytes = excluded.downloaded_bytes,
		total_bytes = excluded.total_bytes,
		partial_path = excluded.partial_path,
		schema_version = excluded.schema_version,
		updated_at = excluded.updated_at
	`

	_, err := s.conn.Exec(query,
		state.PackID, state.SourceURL, state.DownloadedBytes, state.TotalBytes,
		state.PartialPath, state.SchemaVersion, state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save resume state: %w", err)
	}
	return nil
}

// Get retrieves the resume record for a pack, or (nil, nil) when absent.
func (s *Store) Get(packID string) (*models.ResumeState, error) {
	query := `
	SELECT pack_id, source_url, downloaded_bytes, total_bytes,
	       partial_path, schema_version, created_at, updated_at
	FROM resume_state WHERE pack_id = ?
	`

	var state models.ResumeState
	err := s.conn.QueryRow(query, packID).Scan(
		&state.PackID, &state.SourceURL, &state.DownloadedBytes,
		&state.TotalBytes, &state.PartialPath, &state.SchemaVersion,
		&state.CreatedAt, &state.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume state: %w", err)
	}

	return &state, nil
}

// Delete removes the resume record for a pack. Deleting an absent record is
// a no-op.
func (s *Store) Delete(packID string) error {
	_, err := s.conn.Exec(`DELETE FROM resume_state WHERE pack_id = ?`, packID)
	if err != nil {
		return fmt.Errorf("failed to delete resume state: %w", err)
	}
	return nil
}

// List returns all resume records ordered by pack ID. This is read once at
// process start to rehydrate the paused-download set, and periodically by
// the background resume scan.
func (s *Store) List() ([]*models.ResumeState, error) {
	query := `
	SELECT pack_id, source_url, downloaded_bytes, total_bytes,
	       partial_path, schema_version, created_at, updated_at
	FROM resume_state ORDER BY pack_id
	`

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume states: %w", err)
	}
	defer rows.Close()

	var states []*models.ResumeState
	for rows.Next() {
		var state models.ResumeState
		err := rows.Scan(
			&state.PackID, &state.SourceURL, &state.DownloadedBytes,
			&state.TotalBytes, &state.PartialPath, &state.SchemaVersion,
			&state.CreatedAt, &state.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume state: %w", err)
		}
		states = append(states, &state)
	}

	return states, rows.Err()
}

// ParseLegacyRecord parses one entry from the old key-value store, where a
// record was kept under "download_<packId>" as pipe-joined fields in fixed
// order: URL, downloadedBytes, totalBytes, partialFilePath. An earlier
// three-field variant omitted the path; it is rejected with
// ErrLegacyRecord since no partial file can be located for it.
func ParseLegacyRecord(key, value string) (*models.ResumeState, error) {
	if !strings.HasPrefix(key, legacyKeyPrefix) {
		return nil, fmt.Errorf("not a download record key: %s", key)
	}
	packID := strings.TrimPrefix(key, legacyKeyPrefix)
	if packID == "" {
		return nil, fmt.Errorf("empty pack id in key: %s", key)
	}

	fields := strings.Split(value, "|")
	switch len(fields) {
	case 4:
	case 3:
		return nil, fmt.Errorf("record for %s: %w", packID, ErrLegacyRecord)
	default:
		return nil, fmt.Errorf("malformed record for %s: %d fields", packID, len(fields))
	}

	downloaded, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid downloaded bytes for %s: %w", packID, err)
	}
	total, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid total bytes for %s: %w", packID, err)
	}

	return &models.ResumeState{
		PackID:          packID,
		SourceURL:       fields[0],
		DownloadedBytes: downloaded,
		TotalBytes:      total,
		PartialPath:     fields[3],
		SchemaVersion:   models.ResumeSchemaVersion,
	}, nil
}

// ImportLegacy migrates a map of legacy key-value records into the store.
// Records already present are not overwritten. Returns the number imported;
// unmigratable records are reported through the returned error slice so the
// caller can log and discard them explicitly.
func (s *Store) ImportLegacy(records map[string]string) (int, []error) {
	imported := 0
	var errs []error

	for key, value := range records {
		state, err := ParseLegacyRecord(key, value)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		existing, err := s.Get(state.PackID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if existing != nil {
			continue
		}

		if err := s.Save(state); err != nil {
			errs = append(errs, err)
			continue
		}
		imported++
	}

	return imported, errs
}
