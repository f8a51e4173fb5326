package portfolio

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"SignalWatch/internal/logger"
	"SignalWatch/internal/model"
	"SignalWatch/internal/storage"
)

// StoreName is the fixed key the portfolio snapshot is stored under.
const StoreName = "portfolio"

// Store persists whole portfolio snapshots.
// Load returns an empty portfolio when nothing usable is stored.
type Store interface {
	Load() model.Portfolio
	Save(p model.Portfolio) error
}

func empty() model.Portfolio { return model.Portfolio{Items: []model.Holding{}} }

// decode parses a stored snapshot and drops holdings that break the
// per-holding rules or repeat an earlier symbol.
func decode(data []byte, log *logger.Logger) (model.Portfolio, error) {
	var p model.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return empty(), err
	}
	items := make([]model.Holding, 0, len(p.Items))
	seen := make(map[string]bool, len(p.Items))
	for _, h := range p.Items {
		if err := validate.Struct(purchaseOf(h)); err != nil {
			log.Warn("dropping invalid holding", zap.String("symbol", h.Symbol), zap.Error(err))
			continue
		}
		if seen[h.Symbol] {
			log.Warn("dropping duplicate holding", zap.String("symbol", h.Symbol))
			continue
		}
		seen[h.Symbol] = true
		items = append(items, h)
	}
	p.Items = items
	return p, nil
}

// FileStore keeps the snapshot as a JSON file.
type FileStore struct {
	path string
	log  *logger.Logger
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Load() model.Portfolio {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("read portfolio file", zap.String("path", s.path), zap.Error(err))
		}
		return empty()
	}
	p, err := decode(data, s.log)
	if err != nil {
		s.log.Warn("parse portfolio file, starting empty", zap.String("path", s.path), zap.Error(err))
	}
	return p
}

// Save writes the snapshot to a temp file and renames it over the old one.
func (s *FileStore) Save(p model.Portfolio) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create portfolio dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write portfolio: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace portfolio: %w", err)
	}
	return nil
}

// SQLiteStore keeps the snapshot as a row of a key-value table.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteStore creates the key-value table if needed.
func NewSQLiteStore(db *sql.DB, log *logger.Logger) (*SQLiteStore, error) {
	err := storage.Migrate(db, []string{
		`CREATE TABLE IF NOT EXISTS kv_store (
			name       TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	})
	if err != nil {
		return nil, fmt.Errorf("migrate kv_store: %w", err)
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Load() model.Portfolio {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM kv_store WHERE name = ?`, StoreName).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("load portfolio snapshot", zap.Error(err))
		}
		return empty()
	}
	p, err := decode([]byte(payload), s.log)
	if err != nil {
		s.log.Warn("parse portfolio snapshot, starting empty", zap.Error(err))
	}
	return p
}

func (s *SQLiteStore) Save(p model.Portfolio) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO kv_store (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		StoreName, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save portfolio snapshot: %w", err)
	}
	return nil
}
