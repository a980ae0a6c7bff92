package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
)

type linkRepository struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

var _ interfaces.LinkRepository = &linkRepository{}

func newLinkRepository(db *sql.DB, dialect Dialect, table string) *linkRepository {
	return &linkRepository{
		db:      db,
		dialect: dialect,
		table:   table,
	}
}

func (r *linkRepository) schema() string {
	timestampType := "TIMESTAMPTZ"
	if r.dialect == DialectSQLite {
		timestampType = "TIMESTAMP"
	}
	table := quoteIdentifier(r.table)
	index := quoteIdentifier(r.table + "_account_created_idx")

	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			chat_thread_id TEXT NOT NULL,
			tracker_card_id TEXT NOT NULL,
			created_at %[2]s NOT NULL,
			UNIQUE (account_id, chat_thread_id),
			UNIQUE (account_id, tracker_card_id)
		);
		CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s (account_id, created_at DESC);`,
		table, timestampType, index)
}

func (r *linkRepository) migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, r.schema()); err != nil {
		return goerr.Wrap(err, "failed to apply link schema", goerr.V("table", r.table))
	}
	return nil
}

const linkColumns = "id, account_id, chat_thread_id, tracker_card_id, created_at"

func (r *linkRepository) findBy(ctx context.Context, column, accountID, id string) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	query := bind(r.dialect, fmt.Sprintf(
		"SELECT %s FROM %s WHERE account_id = $1 AND %s = $2",
		linkColumns, quoteIdentifier(r.table), column))

	var (
		link      model.Link
		linkID    string
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, accountID, id).
		Scan(&linkID, &link.AccountID, &link.ChatThreadID, &link.TrackerCardID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query link",
			goerr.V("column", column),
			goerr.V("account_id", accountID),
			goerr.V("id", id))
	}

	link.ID = model.LinkID(linkID)
	link.CreatedAt = createdAt.UTC()
	return &link, nil
}

func (r *linkRepository) FindByChatThread(ctx context.Context, accountID, threadID string) (*model.Link, error) {
	return r.findBy(ctx, "chat_thread_id", accountID, threadID)
}

func (r *linkRepository) FindByTrackerCard(ctx context.Context, accountID, cardID string) (*model.Link, error) {
	return r.findBy(ctx, "tracker_card_id", accountID, cardID)
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := link.Validate(); err != nil {
		return goerr.Wrap(err, "invalid link")
	}

	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	query := bind(r.dialect, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING",
		quoteIdentifier(r.table), linkColumns))

	res, err := r.db.ExecContext(ctx, query,
		link.ID.String(), link.AccountID, link.ChatThreadID, link.TrackerCardID, link.CreatedAt.UTC())
	if err != nil {
		return goerr.Wrap(err, "failed to insert link",
			goerr.V("account_id", link.AccountID),
			goerr.V("thread_id", link.ChatThreadID),
			goerr.V("card_id", link.TrackerCardID))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows")
	}
	if n == 0 {
		return goerr.Wrap(interfaces.ErrLinkConflict, "link key already taken",
			goerr.V("account_id", link.AccountID),
			goerr.V("thread_id", link.ChatThreadID),
			goerr.V("card_id", link.TrackerCardID))
	}

	return nil
}

func (r *linkRepository) List(ctx context.Context, accountID string, limit int) ([]*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE account_id = $1 ORDER BY created_at DESC",
		linkColumns, quoteIdentifier(r.table))
	args := []any{accountID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, bind(r.dialect, query), args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list links", goerr.V("account_id", accountID))
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		var (
			link      model.Link
			linkID    string
			createdAt time.Time
		)
		if err := rows.Scan(&linkID, &link.AccountID, &link.ChatThreadID, &link.TrackerCardID, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan link", goerr.V("account_id", accountID))
		}
		link.ID = model.LinkID(linkID)
		link.CreatedAt = createdAt.UTC()
		links = append(links, &link)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate links", goerr.V("account_id", accountID))
	}

	return links, nil
}
