package documentstore

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	s := &Postgres{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) migrate(ctx context.Context) error {
	scripts, err := migrationScripts("postgres")
	if err != nil {
		return err
	}
	for i, script := range scripts {
		if _, err := s.pool.Exec(ctx, script); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return errors.Wrapf(err, "postgres migration %d failed", i+1)
		}
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body::text FROM documents WHERE path = $1`, path).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

func (s *Postgres) Set(ctx context.Context, path string, doc []byte) error {
	if err := validPath(path); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (path, body, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (path) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`, path, string(doc))
	return err
}

func (s *Postgres) Remove(ctx context.Context, path string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE path = $1`, path)
	return err
}

func (s *Postgres) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path, body::text FROM documents
		WHERE starts_with(path, $1)
		ORDER BY path
	`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var path string
		var body []byte
		if err := rows.Scan(&path, &body); err != nil {
			return nil, err
		}
		if strings.HasPrefix(path, prefix) {
			out[path] = body
		}
	}
	return out, rows.Err()
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
