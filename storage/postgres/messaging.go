package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/messaging"
)

const messageQuery = `
SELECT m.*, s.name AS sender_name, s.role AS sender_role, r.name AS receiver_name
FROM messages m
JOIN users s ON s.id = m.sender_id
JOIN users r ON r.id = m.receiver_id`

type messagingRepository struct {
	store *Store
}

func NewMessagingRepository(store *Store) messaging.Repository {
	return &messagingRepository{store: store}
}

func (repo *messagingRepository) CreateMessage(ctx context.Context, msg messaging.Message) (messaging.Message, error) {
	var exists bool
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &exists,
		`SELECT exists(SELECT 1 FROM users WHERE id = $1)`, msg.ReceiverID,
	)
	if err != nil {
		return messaging.Message{}, errors.Wrap(err, "checking receiver")
	}
	if !exists {
		return messaging.Message{}, messaging.ErrReceiverNotFound
	}

	err = sqlx.GetContext(ctx, repo.store.ext(ctx), &msg.ID,
		`INSERT INTO messages (sender_id, receiver_id, subject, content, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		msg.SenderID, msg.ReceiverID, msg.Subject, msg.Content, msg.Status, msg.CreatedAt,
	)
	if err != nil {
		return messaging.Message{}, errors.Wrap(err, "creating message")
	}
	return repo.GetMessageByID(ctx, msg.ID)
}

func (repo *messagingRepository) GetMessageByID(ctx context.Context, id int) (messaging.Message, error) {
	var msg messaging.Message
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &msg,
		messageQuery+` WHERE m.id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return messaging.Message{}, messaging.ErrNotFound
	}
	return msg, errors.Wrap(err, "getting message")
}

func (repo *messagingRepository) QueryMessagesByUserID(ctx context.Context, userID int) ([]messaging.Message, error) {
	msgs := make([]messaging.Message, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &msgs,
		messageQuery+` WHERE m.sender_id = $1 OR m.receiver_id = $1 ORDER BY m.created_at DESC, m.id DESC`,
		userID,
	)
	return msgs, errors.Wrap(err, "querying messages")
}

func (repo *messagingRepository) MarkMessageRead(ctx context.Context, id int) (messaging.Message, error) {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE messages SET status = $1 WHERE id = $2`, messaging.MessageRead, id,
	)
	if err != nil {
		return messaging.Message{}, errors.Wrap(err, "marking message read")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return messaging.Message{}, messaging.ErrNotFound
	}
	return repo.GetMessageByID(ctx, id)
}
