package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"studydesk/internal/models"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// MaterialStore persists uploaded study materials in a local sqlite
// database. Initialization is lazy: the database is opened and the schema
// applied on the first operation, exactly once, no matter how many callers
// race to be first.
type MaterialStore struct {
	dsn string

	initOnce sync.Once
	initErr  error
	conn     *sql.DB
}

// New creates a MaterialStore backed by the sqlite database at dsn. The
// database is not opened until the first operation.
func New(dsn string) *MaterialStore {
	return &MaterialStore{dsn: dsn}
}

// init opens the database and applies the schema. Safe for concurrent
// callers; all of them observe the same fully-initialized store or the same
// initialization error.
func (s *MaterialStore) init() error {
	s.initOnce.Do(func() {
		db, err := sql.Open("sqlite", s.dsn)
		if err != nil {
			s.initErr = storeErr(ErrStorageUnavailable, "open database", err)
			return
		}

		// One connection for the embedded file; concurrent writers would
		// otherwise trip over SQLITE_BUSY.
		db.SetMaxOpenConns(1)

		if err := db.Ping(); err != nil {
			s.initErr = storeErr(ErrStorageUnavailable, "connect to database", err)
			return
		}

		if _, err := db.Exec(schema); err != nil {
			s.initErr = storeErr(ErrStorageUnavailable, "apply schema", err)
			return
		}

		s.conn = db
	})
	return s.initErr
}

// Close closes the database connection if it was ever opened.
func (s *MaterialStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Put inserts a material, replacing any existing record with the same id.
// Retrying with the same material is idempotent.
func (s *MaterialStore) Put(ctx context.Context, m models.Material) error {
	if err := s.init(); err != nil {
		return err
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO materials (id, name, content, mime_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		m.ID,
		m.Name,
		m.Content,
		m.MimeType,
		m.CreatedAt,
	)
	if err != nil {
		if isQuotaErr(err) {
			return storeErr(ErrQuotaExceeded, "insert material", err)
		}
		return storeErr(ErrStorageUnavailable, "insert material", err)
	}
	return nil
}

// Get retrieves a single material by id, content included.
func (s *MaterialStore) Get(ctx context.Context, id string) (models.Material, error) {
	if err := s.init(); err != nil {
		return models.Material{}, err
	}

	var m models.Material
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, name, content, mime_type, created_at
		FROM materials WHERE id = ?
	`, id)

	err := row.Scan(&m.ID, &m.Name, &m.Content, &m.MimeType, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Material{}, ErrMaterialNotFound
		}
		return models.Material{}, storeErr(ErrStorageUnavailable, "find material", err)
	}
	return m, nil
}

// ListAll returns every stored material sorted newest first. The content
// bytes are included so a listing row can be promoted to the active
// material without a second query.
func (s *MaterialStore) ListAll(ctx context.Context) ([]models.Material, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, content, mime_type, created_at
		FROM materials
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, storeErr(ErrStorageUnavailable, "list materials", err)
	}
	defer rows.Close()

	materials := []models.Material{}
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Content, &m.MimeType, &m.CreatedAt); err != nil {
			return nil, storeErr(ErrStorageUnavailable, "scan material row", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(ErrStorageUnavailable, "iterate material rows", err)
	}
	return materials, nil
}

// Clear deletes all stored materials. A single DELETE statement, so callers
// never observe a half-cleared set.
func (s *MaterialStore) Clear(ctx context.Context) error {
	if err := s.init(); err != nil {
		return err
	}

	if _, err := s.conn.ExecContext(ctx, `DELETE FROM materials`); err != nil {
		return storeErr(ErrStorageUnavailable, "clear materials", err)
	}
	return nil
}

// isQuotaErr reports whether the sqlite error indicates exhausted storage.
// modernc.org/sqlite surfaces SQLITE_FULL as a formatted message rather
// than a typed error, so this matches on the canonical text.
func isQuotaErr(err error) bool {
	return strings.Contains(err.Error(), "database or disk is full")
}
