package repository

import (
	"context"
	"time"

	"chatlink/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repositories translate store-level outcomes into the sentinel errors from
// pkg/errors; callers never see driver error types.

type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Chat, error)
	FindByLink(ctx context.Context, link string) (*domain.Chat, error)
	// FindDirect looks up the direct chat holding exactly this unordered pair.
	FindDirect(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error)
	// FindByMember returns every chat the user belongs to, most recently
	// updated first.
	FindByMember(ctx context.Context, userID primitive.ObjectID) ([]domain.Chat, error)
	AddUsers(ctx context.Context, chatID primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Chat, error)
	AddAdmin(ctx context.Context, chatID, userID primitive.ObjectID) (*domain.Chat, error)
	SetName(ctx context.Context, chatID primitive.ObjectID, name string) (*domain.Chat, error)
	SetLink(ctx context.Context, chatID primitive.ObjectID, link string, expires time.Time) (*domain.Chat, error)
	// PullMember removes the user from both the member and admin sets of a
	// group chat in one atomic update. Matching no group chat is not an error.
	PullMember(ctx context.Context, chatID, userID primitive.ObjectID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// FindByChat returns the chat's history, newest first.
	FindByChat(ctx context.Context, chatID primitive.ObjectID) ([]domain.Message, error)
	// AddReadBy records the reader on every matching message that does not
	// already list them. Idempotent.
	AddReadBy(ctx context.Context, messageID, readerID primitive.ObjectID) error
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindProfiles resolves ids to public profiles, password hash excluded.
	FindProfiles(ctx context.Context, ids []primitive.ObjectID) ([]domain.PublicProfile, error)
	SetProfilePic(ctx context.Context, id primitive.ObjectID, url string) error
}
