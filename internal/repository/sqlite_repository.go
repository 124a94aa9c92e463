package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/internal/models"
	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
	seq        INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	participants TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	expire_at  TEXT NOT NULL
)`

// SQLiteStore is the local fallback backend. Timestamps are stored as text
// in TimestampLayout so rows stay column-compatible with the spreadsheet.
type SQLiteStore struct {
	db     *sqlx.DB
	loc    *time.Location
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the database file and ensures the schema.
func NewSQLiteStore(path string, loc *time.Location, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "open sqlite database")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "ping sqlite database")
	}

	s := &SQLiteStore{db: db, loc: loc, logger: logger}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "ensure sqlite schema")
	}

	logger.Info("sqlite storage ready", zap.String("path", path))
	return s, nil
}

// NewSQLiteStoreFromDB wraps an existing connection; used by tests.
func NewSQLiteStoreFromDB(db *sqlx.DB, loc *time.Location, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, loc: loc, logger: logger}
}

type sqliteRow struct {
	Seq          int    `db:"seq"`
	Name         string `db:"name"`
	Type         string `db:"type"`
	Participants string `db:"participants"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
	ExpireAt     string `db:"expire_at"`
}

func (s *SQLiteStore) toItem(row sqliteRow) (models.Item, error) {
	createdAt, err := time.ParseInLocation(TimestampLayout, row.CreatedAt, s.loc)
	if err != nil {
		return models.Item{}, err
	}
	updatedAt, err := time.ParseInLocation(TimestampLayout, row.UpdatedAt, s.loc)
	if err != nil {
		return models.Item{}, err
	}
	expireAt, err := time.ParseInLocation(TimestampLayout, row.ExpireAt, s.loc)
	if err != nil {
		return models.Item{}, err
	}

	return models.Item{
		Seq:          row.Seq,
		Name:         row.Name,
		Type:         models.ItemType(row.Type),
		Participants: models.NormalizeParticipants(row.Participants),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		ExpireAt:     expireAt,
	}, nil
}

// AddItem inserts a record.
func (s *SQLiteStore) AddItem(ctx context.Context, item models.Item) error {
	const query = `INSERT INTO items (seq, name, type, participants, created_at, updated_at, expire_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		item.Seq,
		item.Name,
		string(item.Type),
		item.ParticipantList(),
		item.CreatedAt.Format(TimestampLayout),
		item.UpdatedAt.Format(TimestampLayout),
		item.ExpireAt.Format(TimestampLayout),
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "insert item")
	}
	return nil
}

// ListItems returns every stored record ordered by sequence number.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]models.Item, error) {
	const query = `SELECT seq, name, type, participants, created_at, updated_at, expire_at FROM items ORDER BY seq`
	var rows []sqliteRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "list items")
	}

	items := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		item, err := s.toItem(row)
		if err != nil {
			s.logger.Warn("skipping malformed item row", zap.Int("seq", row.Seq), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// ListExpiring returns records whose expiry is on or before deadline. The
// text timestamp format sorts lexicographically, so the comparison happens
// in SQL.
func (s *SQLiteStore) ListExpiring(ctx context.Context, deadline time.Time) ([]models.Item, error) {
	const query = `SELECT seq, name, type, participants, created_at, updated_at, expire_at FROM items WHERE expire_at <= ? ORDER BY expire_at`
	var rows []sqliteRow
	if err := s.db.SelectContext(ctx, &rows, query, deadline.Format(TimestampLayout)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "list expiring items")
	}

	items := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		item, err := s.toItem(row)
		if err != nil {
			s.logger.Warn("skipping malformed item row", zap.Int("seq", row.Seq), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// NextSeq allocates max existing + 1, starting at 1 for an empty table.
func (s *SQLiteStore) NextSeq(ctx context.Context) (int, error) {
	const query = `SELECT COALESCE(MAX(seq), 0) + 1 FROM items`
	var next int
	if err := s.db.GetContext(ctx, &next, query); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, "allocate sequence number")
	}
	return next, nil
}

// Connected reports whether the database answers a ping.
func (s *SQLiteStore) Connected() bool {
	return s.db.Ping() == nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
