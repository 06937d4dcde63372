package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/ateliernoir/search/internal/models"
)

// SQLiteStore implements Store on SQLite for development and tests. The
// trigram similarity() function is registered on every connection; the
// acceptance threshold is a plain query argument and the statement budget
// is a context deadline, since SQLite has no session-local settings.
type SQLiteStore struct {
	db *sql.DB
}

func init() {
	sql.Register("sqlite3_trgm", &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("similarity", TrigramSimilarity, true)
		},
	})
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3_trgm", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		sku         TEXT NOT NULL DEFAULT '',
		color       TEXT NOT NULL DEFAULT '',
		material    TEXT NOT NULL DEFAULT '',
		price_cents INTEGER NOT NULL DEFAULT 0,
		stock       INTEGER NOT NULL DEFAULT 0,
		rating      REAL NOT NULL DEFAULT 0,
		status      TEXT NOT NULL DEFAULT 'draft',
		created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);

	CREATE TABLE IF NOT EXISTS collections (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS product_collections (
		product_id    TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		PRIMARY KEY (product_id, collection_id)
	);

	CREATE TABLE IF NOT EXISTS search_vocabulary (
		word   TEXT NOT NULL,
		source TEXT NOT NULL,
		PRIMARY KEY (word, source)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SimilaritySearch mirrors the Postgres implementation: a weighted composite
// score against the full query, gated per token on every searched field.
func (s *SQLiteStore) SimilaritySearch(ctx context.Context, query string, tokens []string, opts SimilarityOptions) ([]MatchRow, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	score := `similarity(p.name, ?) * 4
 + similarity(p.sku, ?) * 2
 + similarity(p.color, ?)
 + similarity(p.material, ?)
 + similarity(p.description, ?)
 + coalesce((SELECT max(similarity(c.name, ?))
     FROM product_collections pc
     JOIN collections c ON c.id = pc.collection_id
     WHERE pc.product_id = p.id), 0) * 2`
	args := []any{query, query, query, query, query, query}

	gates := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		gates = append(gates, `(similarity(p.name, ?) >= ?
 OR similarity(p.sku, ?) >= ?
 OR similarity(p.color, ?) >= ?
 OR similarity(p.material, ?) >= ?
 OR similarity(p.description, ?) >= ?
 OR EXISTS (SELECT 1 FROM product_collections pc JOIN collections c ON c.id = pc.collection_id
            WHERE pc.product_id = p.id AND similarity(c.name, ?) >= ?))`)
		for i := 0; i < 6; i++ {
			args = append(args, tok, opts.Threshold)
		}
	}
	where := strings.Join(gates, " AND ")
	if opts.Status != "" {
		where += " AND p.status = ?"
		args = append(args, string(opts.Status))
	}
	args = append(args, opts.Limit)

	stmt := fmt.Sprintf(`SELECT p.id, %s AS score, count(*) OVER () AS total
FROM products p
WHERE %s
ORDER BY score DESC, p.id
LIMIT ?`, score, where)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}
	defer rows.Close()

	var matches []MatchRow
	for rows.Next() {
		var m MatchRow
		if err := rows.Scan(&m.ID, &m.Score, &m.Total); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ClosestTerm returns the single closest vocabulary word above the
// threshold, or nil when nothing clears it.
func (s *SQLiteStore) ClosestTerm(ctx context.Context, word string, opts TermOptions) (*VocabularyHit, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	w := strings.ToLower(word)
	var hit VocabularyHit
	err := s.db.QueryRowContext(ctx,
		`SELECT word, source, similarity(word, ?) AS sim
		 FROM search_vocabulary
		 WHERE similarity(word, ?) >= ?
		 ORDER BY sim DESC, word
		 LIMIT 1`, w, w, opts.Threshold,
	).Scan(&hit.Word, &hit.Source, &hit.Similarity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vocabulary query failed: %w", err)
	}
	return &hit, nil
}

const sqliteProductColumns = `p.id, p.name, p.description, p.sku, p.color, p.material,
 p.price_cents, p.stock, p.rating, p.status, p.created_at, p.updated_at,
 coalesce(json_group_array(c.name) FILTER (WHERE c.name IS NOT NULL), '[]')`

const sqliteProductJoins = `FROM products p
LEFT JOIN product_collections pc ON pc.product_id = p.id
LEFT JOIN collections c ON c.id = pc.collection_id`

func scanSQLiteProduct(scan func(dest ...any) error, extra ...any) (*models.Product, error) {
	var p models.Product
	var collectionsJSON string
	dest := []any{&p.ID, &p.Name, &p.Description, &p.SKU, &p.Color, &p.Material,
		&p.PriceCents, &p.Stock, &p.Rating, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&collectionsJSON}
	dest = append(dest, extra...)
	if err := scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(collectionsJSON), &p.Collections); err != nil {
		return nil, fmt.Errorf("failed to decode collections: %w", err)
	}
	if len(p.Collections) == 0 {
		p.Collections = nil
	}
	return &p, nil
}

// FetchByIDs returns full records for ids with no ordering guarantee.
func (s *SQLiteStore) FetchByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	holders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		holders[i] = "?"
		args[i] = id
	}
	stmt := fmt.Sprintf(`SELECT %s %s WHERE p.id IN (%s) GROUP BY p.id`,
		sqliteProductColumns, sqliteProductJoins, strings.Join(holders, ", "))

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch by ids failed: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanSQLiteProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct returns one record by ID.
func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	stmt := fmt.Sprintf(`SELECT %s %s WHERE p.id = ? GROUP BY p.id`,
		sqliteProductColumns, sqliteProductJoins)
	row := s.db.QueryRowContext(ctx, stmt, id)
	p, err := scanSQLiteProduct(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	return p, err
}

// UpsertProduct inserts or updates a product and rebuilds its collection
// memberships. An empty ID gets a fresh UUID.
func (s *SQLiteStore) UpsertProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO products
		 (id, name, description, sku, color, material, price_cents, stock, rating, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   sku = excluded.sku,
		   color = excluded.color,
		   material = excluded.material,
		   price_cents = excluded.price_cents,
		   stock = excluded.stock,
		   rating = excluded.rating,
		   status = excluded.status,
		   updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Description, p.SKU, p.Color, p.Material,
		p.PriceCents, p.Stock, p.Rating, string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert product failed: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_collections WHERE product_id = ?`, p.ID); err != nil {
		return err
	}
	for _, name := range p.Collections {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collections (id, name) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
			uuid.NewString(), name); err != nil {
			return fmt.Errorf("upsert collection %q failed: %w", name, err)
		}
		var collectionID string
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM collections WHERE name = ?`, name).Scan(&collectionID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO product_collections (product_id, collection_id) VALUES (?, ?)`,
			p.ID, collectionID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListProducts returns one page of records matching cond plus the total count.
func (s *SQLiteStore) ListProducts(ctx context.Context, cond Condition, offset, limit int) ([]*models.Product, int, error) {
	where, args, err := RenderCondition(cond, DialectSQLite)
	if err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	stmt := fmt.Sprintf(`SELECT %s, count(*) OVER () AS total
%s
WHERE %s
GROUP BY p.id
ORDER BY p.created_at DESC, p.id
LIMIT ? OFFSET ?`, sqliteProductColumns, sqliteProductJoins, where)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products failed: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	total := 0
	for rows.Next() {
		p, err := scanSQLiteProduct(rows.Scan, &total)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// RefreshVocabulary rebuilds the spelling-correction vocabulary. The word
// splitting the Postgres store does in SQL happens in Go here.
func (s *SQLiteStore) RefreshVocabulary(ctx context.Context) error {
	type corpus struct {
		query  string
		source models.VocabularySource
	}
	corpora := []corpus{
		{`SELECT name FROM products`, models.SourceProduct},
		{`SELECT color FROM products UNION SELECT material FROM products UNION SELECT name FROM collections`, models.SourceAttribute},
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_vocabulary`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO search_vocabulary (word, source) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range corpora {
		rows, err := tx.QueryContext(ctx, c.query)
		if err != nil {
			return err
		}
		var values []string
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return err
			}
			values = append(values, v)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		for _, v := range values {
			for _, word := range splitWords(strings.ToLower(v)) {
				if len(word) < 3 {
					continue
				}
				if _, err := stmt.ExecContext(ctx, word, string(c.source)); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
