package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned when no recipe exists for the requested id.
var ErrNotFound = errors.New("recipe not found")

// Store defines the interface for recipe data operations.
type Store interface {
	SaveRecipe(ctx context.Context, rec *Record) error
	GetRecipe(ctx context.Context, id string) (*Record, error)
	ListRecipes(ctx context.Context, limit int) ([]*Record, error)
	DeleteRecipe(ctx context.Context, id string) error
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

type recipeRow struct {
	ID            string          `db:"id"`
	SourceURL     string          `db:"source_url"`
	Title         string          `db:"title"`
	Data          json.RawMessage `db:"data"`
	ThumbnailPath string          `db:"thumbnail_path"`
	CreatedAt     time.Time       `db:"created_at"`
}

const recipeColumns = "id, source_url, title, data, thumbnail_path, created_at"

// NewPostgresStore connects to PostgreSQL and ensures the schema exists.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		source_url TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		data JSONB NOT NULL,
		thumbnail_path TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS recipes_created_at_idx ON recipes (created_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SaveRecipe inserts or replaces a recipe.
func (s *PostgresStore) SaveRecipe(ctx context.Context, rec *Record) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO recipes (`+recipeColumns+`) VALUES (:id, :source_url, :title, :data, :thumbnail_path, :created_at)
		ON CONFLICT (id) DO UPDATE SET source_url = :source_url, title = :title, data = :data, thumbnail_path = :thumbnail_path`,
		row,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// GetRecipe retrieves a recipe by id.
func (s *PostgresStore) GetRecipe(ctx context.Context, id string) (*Record, error) {
	var row recipeRow
	err := s.db.GetContext(ctx, &row, "SELECT "+recipeColumns+" FROM recipes WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return fromRow(row)
}

// ListRecipes returns the newest recipes first.
func (s *PostgresStore) ListRecipes(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []recipeRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT "+recipeColumns+" FROM recipes ORDER BY created_at DESC LIMIT $1", limit); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// DeleteRecipe removes a recipe by id.
func (s *PostgresStore) DeleteRecipe(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func toRow(rec *Record) (recipeRow, error) {
	data, err := json.Marshal(rec.Recipe)
	if err != nil {
		return recipeRow{}, fmt.Errorf("failed to marshal recipe: %w", err)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return recipeRow{
		ID:            rec.ID,
		SourceURL:     rec.SourceURL,
		Title:         rec.Title,
		Data:          data,
		ThumbnailPath: rec.ThumbnailPath,
		CreatedAt:     created,
	}, nil
}

func fromRow(row recipeRow) (*Record, error) {
	rec := &Record{
		ID:            row.ID,
		SourceURL:     row.SourceURL,
		ThumbnailPath: row.ThumbnailPath,
		CreatedAt:     row.CreatedAt,
	}
	if err := json.Unmarshal(row.Data, &rec.Recipe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe %s: %w", row.ID, err)
	}
	return rec, nil
}

// MemoryStore is an in-process Store used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (m *MemoryStore) SaveRecipe(_ context.Context, rec *Record) error {
	cp := *rec
	cp.Recipe = rec.Recipe.Clone()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = &cp
	return nil
}

func (m *MemoryStore) GetRecipe(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	cp.Recipe = rec.Recipe.Clone()
	return &cp, nil
}

func (m *MemoryStore) ListRecipes(_ context.Context, limit int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		cp.Recipe = rec.Recipe.Clone()
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) DeleteRecipe(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}
