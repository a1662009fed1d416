package services

import (
	"context"
	"fmt"
	"strings"

	"chatlink/internal/domain"
	"chatlink/internal/repository"
	chatlink_errors "chatlink/pkg/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageService struct {
	messages repository.MessageRepository
	chats    repository.ChatRepository
}

func NewMessageService(messages repository.MessageRepository, chats repository.ChatRepository) *MessageService {
	return &MessageService{messages: messages, chats: chats}
}

// ChatHistory is a chat plus its messages, newest first.
type ChatHistory struct {
	ChatInfo *domain.Chat     `json:"chatInfo"`
	History  []domain.Message `json:"history"`
}

// Send persists a new message from the caller into the chat. The caller must
// be a member of the chat.
func (s *MessageService) Send(ctx context.Context, caller, chatID primitive.ObjectID, content string) (*domain.Message, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content is required: %w", chatlink_errors.ErrInvalidInput)
	}
	if !chat.HasMember(caller) {
		return nil, fmt.Errorf("you are not a member of this chat: %w", chatlink_errors.ErrUnauthorized)
	}

	msg := &domain.Message{
		Sender:  caller,
		Chat:    chatID,
		Content: content,
		ReadBy:  []primitive.ObjectID{},
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) History(ctx context.Context, chatID primitive.ObjectID) (*ChatHistory, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.FindByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return &ChatHistory{ChatInfo: chat, History: messages}, nil
}

// MarkRead records the caller in the message's readBy set. Calling it again
// for the same pair changes nothing and still succeeds.
func (s *MessageService) MarkRead(ctx context.Context, caller, messageID primitive.ObjectID) error {
	return s.messages.AddReadBy(ctx, messageID, caller)
}
