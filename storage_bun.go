package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type storageEntry struct {
	bun.BaseModel `bun:"table:session_store,alias:ss"`
	Key           string    `bun:"key,pk" json:"key"`
	Value         string    `bun:"value,notnull" json:"value"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// BunBackend is a durable StorageBackend over a Bun database. Front-ends
// use it with a local sqlite file so the token survives restarts.
type BunBackend struct {
	db *bun.DB
}

// NewBunBackend wraps an existing Bun database. Call Init before first use
// when the schema may not exist yet.
func NewBunBackend(db *bun.DB) *BunBackend {
	return &BunBackend{db: db}
}

// OpenSQLiteBackend opens a sqlite-backed session store at the given DSN
// and ensures the schema exists.
func OpenSQLiteBackend(ctx context.Context, dsn string) (*BunBackend, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open session store")
	}

	backend := NewBunBackend(bun.NewDB(sqldb, sqlitedialect.New()))
	if err := backend.Init(ctx); err != nil {
		return nil, err
	}

	return backend, nil
}

// Init creates the backing table if needed.
func (b *BunBackend) Init(ctx context.Context) error {
	if _, err := b.db.NewCreateTable().
		Model((*storageEntry)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize session store schema")
	}
	return nil
}

func (b *BunBackend) Get(ctx context.Context, key string) (string, error) {
	entry := new(storageEntry)
	err := b.db.NewSelect().
		Model(entry).
		Where("?TableAlias.key = ?", key).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "session store read failed")
	}

	return entry.Value, nil
}

func (b *BunBackend) Set(ctx context.Context, key, value string) error {
	entry := &storageEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	if _, err := b.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session store write failed")
	}

	return nil
}

func (b *BunBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.NewDelete().
		Model((*storageEntry)(nil)).
		Where("?TableAlias.key = ?", key).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session store delete failed")
	}
	return nil
}

// Close releases the underlying database.
func (b *BunBackend) Close() error {
	return b.db.Close()
}
