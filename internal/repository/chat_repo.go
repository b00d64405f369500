package repository

import (
	"context"

	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/store"
)

// ChatRepository chat message access
type ChatRepository interface {
	List(ctx context.Context) ([]model.ChatMessage, error)
	Append(ctx context.Context, msg *model.ChatMessage) error
	// MarkRead flags every message from senderID to recipientID as read and returns how many changed.
	MarkRead(ctx context.Context, senderID, recipientID string) (int, error)
}

type chatRepo struct {
	c collection[model.ChatMessage]
}

// NewChatRepo creates a ChatRepository.
func NewChatRepo(st store.Store, tx store.Transactor) ChatRepository {
	return &chatRepo{c: collection[model.ChatMessage]{
		st:   st,
		tx:   tx,
		key:  store.KeyChats,
		idOf: func(m *model.ChatMessage) string { return m.ID },
	}}
}

func (r *chatRepo) List(ctx context.Context) ([]model.ChatMessage, error) {
	msgs, _, err := r.c.all(ctx)
	return msgs, err
}

func (r *chatRepo) Append(ctx context.Context, msg *model.ChatMessage) error {
	return r.c.write(ctx, func(c collection[model.ChatMessage]) error {
		msgs, _, err := c.all(ctx)
		if err != nil {
			return err
		}
		return c.save(ctx, append(msgs, *msg))
	})
}

func (r *chatRepo) MarkRead(ctx context.Context, senderID, recipientID string) (int, error) {
	n := 0
	err := r.c.write(ctx, func(c collection[model.ChatMessage]) error {
		msgs, _, err := c.all(ctx)
		if err != nil {
			return err
		}
		for i := range msgs {
			if msgs[i].SenderID == senderID && msgs[i].RecipientID == recipientID && !msgs[i].IsRead {
				msgs[i].IsRead = true
				n++
			}
		}
		if n == 0 {
			return nil
		}
		return c.save(ctx, msgs)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
