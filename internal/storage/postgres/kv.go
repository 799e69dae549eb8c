package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/invoicepro/internal/store"
)

const documentsTable = "documents"

const upsertSuffix = "ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at"

var _ store.KV = (*KV)(nil)

type document struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

// KV stores each key as one row of the documents table.
type KV struct {
	pool *pgxpool.Pool
	sb   squirrel.StatementBuilderType
	now  func() time.Time
}

// NewKV returns a KV that uses the given pool. The schema must already
// exist, see RunMigrations.
func NewKV(pool *pgxpool.Pool) *KV {
	return &KV{
		pool: pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:  time.Now,
	}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	sql, args, err := k.sb.
		Select("key", "value").
		From(documentsTable).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build query")
	}

	var doc document
	if err := pgxscan.Get(ctx, k.pool, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, store.ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "get %q", key)
	}
	return doc.Value, nil
}

func (k *KV) Put(ctx context.Context, key string, value []byte) error {
	sql, args, err := k.upsert(map[string][]byte{key: value})
	if err != nil {
		return err
	}
	if _, err := k.pool.Exec(ctx, sql, args...); err != nil {
		return errors.Wrapf(err, "put %q", key)
	}
	return nil
}

// PutMany upserts all entries in one transaction.
func (k *KV) PutMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	sql, args, err := k.upsert(entries)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, k.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return errors.Wrap(err, "put many")
		}
		return nil
	})
}

func (k *KV) upsert(entries map[string][]byte) (string, []any, error) {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	now := k.now().UTC()
	q := k.sb.Insert(documentsTable).Columns("key", "value", "updated_at")
	for _, key := range keys {
		q = q.Values(key, entries[key], now)
	}
	sql, args, err := q.Suffix(upsertSuffix).ToSql()
	if err != nil {
		return "", nil, errors.Wrap(err, "build upsert")
	}
	return sql, args, nil
}

func (k *KV) Delete(ctx context.Context, key string) error {
	sql, args, err := k.sb.
		Delete(documentsTable).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build delete")
	}
	if _, err := k.pool.Exec(ctx, sql, args...); err != nil {
		return errors.Wrapf(err, "delete %q", key)
	}
	return nil
}

func (k *KV) Ping(ctx context.Context) error {
	return k.pool.Ping(ctx)
}
