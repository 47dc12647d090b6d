package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/repository"
)

var _ repository.SubscriptionStore = (*SubscriptionStore)(nil)

// SubscriptionStore is the networked alternative to the JSON document
// store. Schema:
//
//	CREATE TABLE queue_subscriptions (
//	  chat_id           BIGINT      NOT NULL,
//	  user_id           BIGINT      NOT NULL,
//	  display_name      TEXT        NOT NULL DEFAULT '',
//	  target_number     INT         NOT NULL,
//	  created_at        TIMESTAMPTZ NOT NULL,
//	  origin_message_id INT         NOT NULL DEFAULT 0,
//	  PRIMARY KEY (chat_id, user_id)
//	);
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{pool: pool}
}

const subCols = "chat_id, user_id, display_name, target_number, created_at, origin_message_id"

func scanSub(row pgx.Row) (*model.QueueSubscription, error) {
	var s model.QueueSubscription
	err := row.Scan(&s.ChatID, &s.UserID, &s.DisplayName, &s.TargetNumber, &s.CreatedAt, &s.OriginMessageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionStore) ListAll(ctx context.Context) ([]*model.QueueSubscription, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+subCols+" FROM queue_subscriptions ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.QueueSubscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReplaceAll keeps the port's whole-collection contract: the retained set
// overwrites the table in one transaction.
func (r *SubscriptionStore) ReplaceAll(ctx context.Context, subs []*model.QueueSubscription) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, "DELETE FROM queue_subscriptions"); err != nil {
		return err
	}
	const q = `
INSERT INTO queue_subscriptions (chat_id, user_id, display_name, target_number, created_at, origin_message_id)
VALUES ($1,$2,$3,$4,$5,$6);`
	for _, s := range subs {
		if _, err := tx.Exec(ctx, q, s.ChatID, s.UserID, s.DisplayName, s.TargetNumber, s.CreatedAt, s.OriginMessageID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *SubscriptionStore) Find(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+subCols+" FROM queue_subscriptions WHERE chat_id=$1 AND user_id=$2", chatID, userID)
	return scanSub(row)
}

func (r *SubscriptionStore) Add(ctx context.Context, sub *model.QueueSubscription) error {
	if sub == nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO queue_subscriptions (chat_id, user_id, display_name, target_number, created_at, origin_message_id)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := r.pool.Exec(ctx, q, sub.ChatID, sub.UserID, sub.DisplayName, sub.TargetNumber, sub.CreatedAt, sub.OriginMessageID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *SubscriptionStore) Remove(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error) {
	row := r.pool.QueryRow(ctx, `
DELETE FROM queue_subscriptions
 WHERE chat_id=$1 AND user_id=$2
RETURNING `+subCols, chatID, userID)
	return scanSub(row)
}
