package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ateliernoir/search/internal/models"
)

// PostgresStore implements Store on Postgres with the pg_trgm extension.
// Similarity acceptance and statement timeout are tuned per transaction via
// set_config(..., is_local => true), so they can never leak to other
// requests sharing the pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	ddl := `
CREATE EXTENSION IF NOT EXISTS pg_trgm;

CREATE TABLE IF NOT EXISTS products (
  id          text PRIMARY KEY,
  name        text NOT NULL,
  description text NOT NULL DEFAULT '',
  sku         text NOT NULL DEFAULT '',
  color       text NOT NULL DEFAULT '',
  material    text NOT NULL DEFAULT '',
  price_cents bigint NOT NULL DEFAULT 0,
  stock       integer NOT NULL DEFAULT 0,
  rating      double precision NOT NULL DEFAULT 0,
  status      text NOT NULL DEFAULT 'draft',
  created_at  timestamptz NOT NULL DEFAULT now(),
  updated_at  timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS collections (
  id   text PRIMARY KEY,
  name text NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS product_collections (
  product_id    text NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  collection_id text NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
  PRIMARY KEY (product_id, collection_id)
);

CREATE TABLE IF NOT EXISTS search_vocabulary (
  word   text NOT NULL,
  source text NOT NULL,
  PRIMARY KEY (word, source)
);

CREATE INDEX IF NOT EXISTS products_name_trgm_idx ON products USING gin (name gin_trgm_ops);
CREATE INDEX IF NOT EXISTS products_description_trgm_idx ON products USING gin (description gin_trgm_ops);
CREATE INDEX IF NOT EXISTS products_sku_trgm_idx ON products USING gin (sku gin_trgm_ops);
CREATE INDEX IF NOT EXISTS products_status_idx ON products (status);
CREATE INDEX IF NOT EXISTS vocabulary_word_trgm_idx ON search_vocabulary USING gin (word gin_trgm_ops);
`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// compositeScore combines per-field trigram similarity into one relevance
// figure. The name dominates, SKU and collection names count double, the
// remaining descriptive fields count single. $1 is the full query string.
const compositeScore = `similarity(p.name, $1) * 4
 + similarity(p.sku, $1) * 2
 + similarity(p.color, $1)
 + similarity(p.material, $1)
 + similarity(p.description, $1)
 + coalesce((SELECT max(similarity(c.name, $1))
     FROM product_collections pc
     JOIN collections c ON c.id = pc.collection_id
     WHERE pc.product_id = p.id), 0) * 2`

func applySessionTuning(ctx context.Context, tx pgx.Tx, threshold float64, timeout time.Duration) error {
	if _, err := tx.Exec(ctx,
		`SELECT set_config('pg_trgm.similarity_threshold', $1, true)`,
		strconv.FormatFloat(threshold, 'f', -1, 64),
	); err != nil {
		return fmt.Errorf("failed to set similarity threshold: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`SELECT set_config('statement_timeout', $1, true)`,
		strconv.FormatInt(timeout.Milliseconds(), 10),
	); err != nil {
		return fmt.Errorf("failed to set statement timeout: %w", err)
	}
	return nil
}

// SimilaritySearch scores the catalog against the full query and applies
// the per-token gate: a row survives only when every token clears the
// session threshold (the % operator) on at least one searched field.
func (s *PostgresStore) SimilaritySearch(ctx context.Context, query string, tokens []string, opts SimilarityOptions) ([]MatchRow, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := applySessionTuning(ctx, tx, opts.Threshold, opts.Timeout); err != nil {
		return nil, err
	}

	args := []any{query}
	gates := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		args = append(args, tok)
		n := len(args)
		gates = append(gates, fmt.Sprintf(
			`(p.name %% $%d OR p.sku %% $%d OR p.color %% $%d OR p.material %% $%d OR p.description %% $%d
  OR EXISTS (SELECT 1 FROM product_collections pc JOIN collections c ON c.id = pc.collection_id
             WHERE pc.product_id = p.id AND c.name %% $%d))`,
			n, n, n, n, n, n))
	}
	where := strings.Join(gates, " AND ")
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		where += fmt.Sprintf(" AND p.status = $%d", len(args))
	}
	args = append(args, opts.Limit)

	stmt := fmt.Sprintf(`SELECT p.id, %s AS score, count(*) OVER () AS total
FROM products p
WHERE %s
ORDER BY score DESC, p.id
LIMIT $%d`, compositeScore, where, len(args))

	rows, err := tx.Query(ctx, stmt, args...)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return matches, nil
}

// ClosestTerm returns the single closest vocabulary word above the session
// threshold, or nil when nothing clears it.
func (s *PostgresStore) ClosestTerm(ctx context.Context, word string, opts TermOptions) (*VocabularyHit, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := applySessionTuning(ctx, tx, opts.Threshold, opts.Timeout); err != nil {
		return nil, err
	}

	var hit VocabularyHit
	err = tx.QueryRow(ctx,
		`SELECT word, source, similarity(word, $1)
FROM search_vocabulary
WHERE word % $1
ORDER BY 3 DESC, word
LIMIT 1`, strings.ToLower(word),
	).Scan(&hit.Word, &hit.Source, &hit.Similarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tx.Commit(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("vocabulary query failed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &hit, nil
}

const productColumns = `p.id, p.name, p.description, p.sku, p.color, p.material,
 p.price_cents, p.stock, p.rating, p.status, p.created_at, p.updated_at,
 coalesce(array_agg(c.name ORDER BY c.name) FILTER (WHERE c.name IS NOT NULL), '{}')`

const productJoins = `FROM products p
LEFT JOIN product_collections pc ON pc.product_id = p.id
LEFT JOIN collections c ON c.id = pc.collection_id`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Color, &p.Material,
		&p.PriceCents, &p.Stock, &p.Rating, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&p.Collections)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchByIDs returns full records for ids with no ordering guarantee.
func (s *PostgresStore) FetchByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	stmt := fmt.Sprintf(`SELECT %s %s WHERE p.id = ANY($1) GROUP BY p.id`, productColumns, productJoins)
	rows, err := s.pool.Query(ctx, stmt, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch by ids failed: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct returns one record by ID.
func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	stmt := fmt.Sprintf(`SELECT %s %s WHERE p.id = $1 GROUP BY p.id`, productColumns, productJoins)
	p, err := scanProduct(s.pool.QueryRow(ctx, stmt, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	return p, err
}

// UpsertProduct inserts or updates a product and rebuilds its collection
// memberships. An empty ID gets a fresh UUID.
func (s *PostgresStore) UpsertProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO products
 (id, name, description, sku, color, material, price_cents, stock, rating, status, created_at, updated_at)
 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
 ON CONFLICT (id) DO UPDATE SET
   name = EXCLUDED.name,
   description = EXCLUDED.description,
   sku = EXCLUDED.sku,
   color = EXCLUDED.color,
   material = EXCLUDED.material,
   price_cents = EXCLUDED.price_cents,
   stock = EXCLUDED.stock,
   rating = EXCLUDED.rating,
   status = EXCLUDED.status,
   updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Description, p.SKU, p.Color, p.Material,
		p.PriceCents, p.Stock, p.Rating, string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert product failed: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_collections WHERE product_id = $1`, p.ID); err != nil {
		return err
	}
	for _, name := range p.Collections {
		var collectionID string
		err := tx.QueryRow(ctx, `INSERT INTO collections (id, name) VALUES ($1, $2)
 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
 RETURNING id`, uuid.NewString(), name).Scan(&collectionID)
		if err != nil {
			return fmt.Errorf("upsert collection %q failed: %w", name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO product_collections (product_id, collection_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			p.ID, collectionID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListProducts returns one page of records matching cond plus the total count.
func (s *PostgresStore) ListProducts(ctx context.Context, cond Condition, offset, limit int) ([]*models.Product, int, error) {
	where, args, err := RenderCondition(cond, DialectPostgres)
	if err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	stmt := fmt.Sprintf(`SELECT %s, count(*) OVER () AS total
%s
WHERE %s
GROUP BY p.id
ORDER BY p.created_at DESC, p.id
LIMIT $%d OFFSET $%d`, productColumns, productJoins, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products failed: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	total := 0
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Color, &p.Material,
			&p.PriceCents, &p.Stock, &p.Rating, &p.Status, &p.CreatedAt, &p.UpdatedAt,
			&p.Collections, &total); err != nil {
			return nil, 0, err
		}
		products = append(products, &p)
	}
	return products, total, rows.Err()
}

// RefreshVocabulary rebuilds the spelling-correction vocabulary: product
// name words feed the "product" corpus, color/material/collection words
// feed the "attribute" corpus. Words shorter than three characters carry
// too little trigram signal to correct toward and are skipped.
func (s *PostgresStore) RefreshVocabulary(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM search_vocabulary`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO search_vocabulary (word, source)
SELECT DISTINCT lower(w), 'product'
FROM products p, regexp_split_to_table(p.name, '[^[:alnum:]]+') AS w
WHERE length(w) >= 3`); err != nil {
		return fmt.Errorf("refresh product vocabulary failed: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO search_vocabulary (word, source)
SELECT DISTINCT lower(w), 'attribute'
FROM (
  SELECT color AS v FROM products
  UNION SELECT material FROM products
  UNION SELECT name FROM collections
) vals, regexp_split_to_table(vals.v, '[^[:alnum:]]+') AS w
WHERE length(w) >= 3
ON CONFLICT DO NOTHING`); err != nil {
		return fmt.Errorf("refresh attribute vocabulary failed: %w", err)
	}
	return tx.Commit(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
