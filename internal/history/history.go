// Package history persists analysis results so they can be listed, reopened
// and compared. Items are kept newest first and trimmed to a fixed count.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/vexora/internal/interfaces"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/model"
)

var (
	ErrNotFound      = errors.New("history item not found")
	ErrUnknownDriver = errors.New("unknown history driver")
	ErrInvalidKind   = errors.New("invalid history kind")
)

const (
	DefaultMaxItems = 50

	// summaryLength is the number of characters of a text input that are kept.
	summaryLength = 100
)

// Config selects the backing database.
type Config struct {
	Driver   string `yaml:"driver" json:"driver"`
	DSN      string `yaml:"dsn" json:"dsn"`
	MaxItems int    `yaml:"max_items" json:"max_items"`
}

// Store is a HistoryStore over database/sql.
type Store struct {
	db       *sql.DB
	dialect  dialect
	maxItems int
	logger   logging.Logger
	now      func() time.Time
}

var _ interfaces.HistoryStore = (*Store)(nil)

// Open connects to the configured database, checks it answers and applies
// the schema.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("history: dsn is required for driver %s", d.driver)
	}
	db, err := sql.Open(d.driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if d.driver == DriverSQLite {
		// one writer avoids SQLITE_BUSY and keeps in-memory databases shared
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}

	s, err := New(db, d.driver, cfg.MaxItems, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and applies the schema. maxItems <= 0 uses
// DefaultMaxItems.
func New(db *sql.DB, driver string, maxItems int, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	stmts, err := d.statements()
	if err != nil {
		return nil, err
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to execute schema: %w", err)
		}
	}
	return &Store{
		db:       db,
		dialect:  d,
		maxItems: maxItems,
		logger:   logger.With(logging.Field{Key: "component", Value: "history"}, logging.Field{Key: "driver", Value: d.driver}),
		now:      time.Now,
	}, nil
}

// Save records result and drops the oldest items beyond the limit.
func (s *Store) Save(ctx context.Context, kind model.Kind, input string, result *model.AnalysisResult) (*model.HistoryItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if result == nil {
		return nil, fmt.Errorf("save history: nil result")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	item := &model.HistoryItem{
		ID:        uuid.New().String(),
		Kind:      kind,
		Input:     Summarize(kind, input),
		Result:    result,
		Timestamp: s.now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO history_items (id, kind, input, status, confidence, result, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`),
		item.ID, string(kind), item.Input, string(result.Status), result.Confidence, string(payload), item.Timestamp.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert history item: %w", err)
	}

	if err := s.trim(ctx); err != nil {
		s.logger.Warn("trim failed", logging.Err(err))
	}
	return item, nil
}

// trim deletes everything older than the maxItems-th newest item.
func (s *Store) trim(ctx context.Context) error {
	var cutoff int64
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT seq FROM history_items ORDER BY seq DESC LIMIT 1 OFFSET ?`), s.maxItems-1,
	).Scan(&cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find trim cutoff: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM history_items WHERE seq < ?`), cutoff)
	if err != nil {
		return fmt.Errorf("delete old items: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug("trimmed history", logging.Field{Key: "removed", Value: n})
	}
	return nil
}

// List returns up to limit items, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]*model.HistoryItem, error) {
	if limit <= 0 || limit > s.maxItems {
		limit = s.maxItems
	}
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT id, kind, input, result, created_at
         FROM history_items
         ORDER BY seq DESC
         LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]*model.HistoryItem, 0, limit)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

// Get returns one item by id.
func (s *Store) Get(ctx context.Context, id string) (*model.HistoryItem, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT id, kind, input, result, created_at
         FROM history_items
         WHERE id = ?
         LIMIT 1`), id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Clear deletes every item.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history_items`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.logger.Info("history cleared")
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.HistoryItem, error) {
	var (
		item    model.HistoryItem
		kind    string
		payload string
		created int64
	)
	if err := row.Scan(&item.ID, &kind, &item.Input, &payload, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan history item: %w", err)
	}
	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decode result of %s: %w", item.ID, err)
	}
	item.Kind = model.Kind(kind)
	item.Result = &result
	item.Timestamp = time.Unix(0, created).UTC()
	return &item, nil
}

// Summarize shortens an input for storage. Text keeps its first 100
// characters followed by "..." when longer; other inputs are stored as given.
func Summarize(kind model.Kind, input string) string {
	if kind != model.KindText {
		return input
	}
	runes := []rune(input)
	if len(runes) <= summaryLength {
		return input
	}
	return string(runes[:summaryLength]) + "..."
}
