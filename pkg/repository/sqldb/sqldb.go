package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects the SQL flavor and driver
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

const (
	defaultTableName = "links"
	operationTimeout = 5 * time.Second
)

// DB is a SQL backed Repository. The schema is applied when it is opened.
type DB struct {
	db      *sql.DB
	dialect Dialect
	link    *linkRepository
}

var _ interfaces.Repository = &DB{}

type Option func(*DB)

// WithTablePrefix prefixes the links table name, e.g. "staging" gives "staging_links"
func WithTablePrefix(prefix string) Option {
	return func(d *DB) {
		if prefix != "" {
			d.link.table = prefix + "_" + defaultTableName
		}
	}
}

// NewPostgres opens a PostgreSQL repository
func NewPostgres(ctx context.Context, dsn string, opts ...Option) (*DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, goerr.New("postgres DSN is required")
	}
	return open(ctx, DialectPostgres, dsn, opts...)
}

// NewSQLite opens (and creates when missing) a SQLite repository at path
func NewSQLite(ctx context.Context, path string, opts ...Option) (*DB, error) {
	if path == "" {
		return nil, goerr.New("sqlite path is required")
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	return open(ctx, DialectSQLite, dsn, opts...)
}

func open(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*DB, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("dialect", dialect))
	}

	if dialect == DialectSQLite {
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	d := &DB{
		db:      db,
		dialect: dialect,
	}
	d.link = newLinkRepository(db, dialect, defaultTableName)
	for _, opt := range opts {
		opt(d)
	}

	pingCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect to database", goerr.V("dialect", dialect))
	}

	if err := d.link.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

func (d *DB) Link() interfaces.LinkRepository {
	return d.link
}

// Dialect returns the SQL flavor in use
func (d *DB) Dialect() Dialect {
	return d.dialect
}

func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// bind rewrites $N placeholders for dialects that only understand "?"
func bind(dialect Dialect, query string) string {
	if dialect != DialectSQLite {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
