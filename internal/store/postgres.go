package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/serroba/page-analyzer/internal/website"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

const schema = `
CREATE TABLE IF NOT EXISTS urls (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS url_checks (
	id          BIGSERIAL PRIMARY KEY,
	status_code INTEGER NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	h1          TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	url_id      BIGINT NOT NULL REFERENCES urls (id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_url_checks_url_id_created_at ON url_checks (url_id, created_at DESC, id DESC);
`

// Pool is the subset of pgxpool.Pool used by the Postgres repositories.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is a PostgreSQL backend for URLs and their checks.
type PostgresStore struct {
	pool Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store on an existing pool.
func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist yet.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

// URLs returns the URL repository view of the store.
func (p *PostgresStore) URLs() *PostgresURLs {
	return &PostgresURLs{pool: p.pool}
}

// Checks returns the check repository view of the store.
func (p *PostgresStore) Checks() *PostgresChecks {
	return &PostgresChecks{pool: p.pool}
}

// PostgresURLs implements website.URLRepository.
type PostgresURLs struct {
	pool Pool
}

func (r *PostgresURLs) Save(ctx context.Context, url *website.URL) error {
	query := `
		INSERT INTO urls (name)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, url.Name).Scan(&url.ID, &url.CreatedAt)
	if err != nil {
		return translate("insert url", err)
	}

	return nil
}

func (r *PostgresURLs) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM urls WHERE name = $1)`

	var exists bool

	if err := r.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, translate("url exists", err)
	}

	return exists, nil
}

func (r *PostgresURLs) Find(ctx context.Context, id int64) (*website.URL, error) {
	query := `
		SELECT id, name, created_at
		FROM urls
		WHERE id = $1
	`

	var url website.URL

	err := r.pool.QueryRow(ctx, query, id).Scan(&url.ID, &url.Name, &url.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, website.ErrNotFound
		}

		return nil, translate("find url", err)
	}

	return &url, nil
}

func (r *PostgresURLs) List(ctx context.Context) ([]website.URL, error) {
	query := `
		SELECT id, name, created_at
		FROM urls
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, translate("list urls", err)
	}
	defer rows.Close()

	var urls []website.URL

	for rows.Next() {
		var url website.URL
		if err := rows.Scan(&url.ID, &url.Name, &url.CreatedAt); err != nil {
			return nil, translate("scan url", err)
		}

		urls = append(urls, url)
	}

	if err := rows.Err(); err != nil {
		return nil, translate("list urls", err)
	}

	return urls, nil
}

// Clear removes every URL together with its checks.
func (r *PostgresURLs) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE urls, url_checks RESTART IDENTITY CASCADE`); err != nil {
		return translate("clear urls", err)
	}

	return nil
}

// PostgresChecks implements website.CheckRepository.
type PostgresChecks struct {
	pool Pool
}

func (r *PostgresChecks) Save(ctx context.Context, check *website.Check) error {
	query := `
		INSERT INTO url_checks (status_code, title, h1, description, url_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		check.StatusCode,
		check.Title,
		check.H1,
		check.Description,
		check.URLID,
	).Scan(&check.ID, &check.CreatedAt)
	if err != nil {
		return translate("insert check", err)
	}

	return nil
}

func (r *PostgresChecks) FindByURLID(ctx context.Context, urlID int64) ([]website.Check, error) {
	query := `
		SELECT id, url_id, status_code, title, h1, description, created_at
		FROM url_checks
		WHERE url_id = $1
		ORDER BY id DESC
	`

	rows, err := r.pool.Query(ctx, query, urlID)
	if err != nil {
		return nil, translate("find checks", err)
	}

	return collectChecks(rows)
}

// LatestPerURL resolves the latest check of every URL in a single query.
func (r *PostgresChecks) LatestPerURL(ctx context.Context) (map[int64]website.Check, error) {
	query := `
		SELECT DISTINCT ON (url_id) id, url_id, status_code, title, h1, description, created_at
		FROM url_checks
		ORDER BY url_id, created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, translate("latest checks", err)
	}

	checks, err := collectChecks(rows)
	if err != nil {
		return nil, err
	}

	latest := make(map[int64]website.Check, len(checks))
	for _, check := range checks {
		latest[check.URLID] = check
	}

	return latest, nil
}

func (r *PostgresChecks) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE url_checks RESTART IDENTITY`); err != nil {
		return translate("clear checks", err)
	}

	return nil
}

func collectChecks(rows pgx.Rows) ([]website.Check, error) {
	defer rows.Close()

	var checks []website.Check

	for rows.Next() {
		var c website.Check
		if err := rows.Scan(&c.ID, &c.URLID, &c.StatusCode, &c.Title, &c.H1, &c.Description, &c.CreatedAt); err != nil {
			return nil, translate("scan check", err)
		}

		checks = append(checks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, translate("read checks", err)
	}

	return checks, nil
}

// translate maps driver errors onto the website error taxonomy.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, website.ErrConflict, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, website.ErrNotFound, err)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, website.ErrStorage, err)
}

// Compile-time checks.
var (
	_ website.URLRepository   = (*PostgresURLs)(nil)
	_ website.CheckRepository = (*PostgresChecks)(nil)
)
