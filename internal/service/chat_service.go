package service

import (
	"context"

	"go.uber.org/zap"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

// ChatService dispatcher/worker messaging
type ChatService interface {
	Send(ctx context.Context, req *dto.SendMessageRequest) (*model.ChatMessage, error)
	// List returns the messages a worker sent or received; "all" or "" returns everything.
	List(ctx context.Context, workerID string) ([]model.ChatMessage, error)
	MarkRead(ctx context.Context, workerID, dispatcherID string) (int, error)
}

type chatService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    Clock
}

// NewChatService creates a ChatService.
func NewChatService(repo *repository.Repository, logger *zap.Logger, now Clock) ChatService {
	return &chatService{repo: repo, logger: logger, now: now}
}

func (s *chatService) Send(ctx context.Context, req *dto.SendMessageRequest) (*model.ChatMessage, error) {
	msg := &model.ChatMessage{
		ID:          newID(),
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Text:        req.Text,
		Timestamp:   model.FormatTime(s.now()),
		Status:      model.MessageStatusSent,
	}
	if req.OrderID != nil || req.Type != nil {
		msg.Metadata = &model.MessageMetadata{OrderID: req.OrderID, Type: req.Type}
	}
	if err := s.repo.Chat.Append(ctx, msg); err != nil {
		s.logger.Error("failed to send message", zap.Error(err))
		return nil, err
	}
	return msg, nil
}

func (s *chatService) List(ctx context.Context, workerID string) ([]model.ChatMessage, error) {
	msgs, err := s.repo.Chat.List(ctx)
	if err != nil {
		s.logger.Error("failed to list messages", zap.Error(err))
		return nil, err
	}
	if workerID == "" || workerID == "all" {
		return msgs, nil
	}
	out := make([]model.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.SenderID == workerID || m.RecipientID == workerID {
			out = append(out, m)
		}
	}
	return out, nil
}

// MarkRead flags messages the worker sent to the dispatcher as read.
func (s *chatService) MarkRead(ctx context.Context, workerID, dispatcherID string) (int, error) {
	n, err := s.repo.Chat.MarkRead(ctx, workerID, dispatcherID)
	if err != nil {
		s.logger.Error("failed to mark messages read", zap.Error(err))
		return 0, err
	}
	return n, nil
}
