package server

import (
	"context"
	"sync"
	"time"

	"chatlink/internal/domain"
	chatlink_errors "chatlink/pkg/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories backing the route tests, mirroring the store's
// update semantics.

type memChatRepo struct {
	mu    sync.Mutex
	chats map[primitive.ObjectID]*domain.Chat
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{chats: make(map[primitive.ObjectID]*domain.Chat)}
}

func (r *memChatRepo) Create(_ context.Context, chat *domain.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat.ID = primitive.NewObjectID()
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	clone := *chat
	r.chats[chat.ID] = &clone
	return nil
}

func (r *memChatRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, chatlink_errors.ErrNotFound
	}
	clone := *chat
	return &clone, nil
}

func (r *memChatRepo) FindByLink(_ context.Context, link string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chat := range r.chats {
		if chat.Link != "" && chat.Link == link {
			clone := *chat
			return &clone, nil
		}
	}
	return nil, chatlink_errors.ErrNotFound
}

func (r *memChatRepo) FindDirect(_ context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chat := range r.chats {
		if !chat.IsGroupChat && chat.HasMember(a) && chat.HasMember(b) {
			clone := *chat
			return &clone, nil
		}
	}
	return nil, chatlink_errors.ErrNotFound
}

func (r *memChatRepo) FindByMember(_ context.Context, userID primitive.ObjectID) ([]domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Chat
	for _, chat := range r.chats {
		if chat.HasMember(userID) {
			out = append(out, *chat)
		}
	}
	return out, nil
}

func (r *memChatRepo) AddUsers(_ context.Context, chatID primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return nil, chatlink_errors.ErrNotFound
	}
	for _, id := range userIDs {
		if !chat.HasMember(id) {
			chat.Users = append(chat.Users, id)
		}
	}
	chat.UpdatedAt = time.Now()
	clone := *chat
	return &clone, nil
}

func (r *memChatRepo) AddAdmin(_ context.Context, chatID, userID primitive.ObjectID) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return nil, chatlink_errors.ErrNotFound
	}
	if !chat.HasAdmin(userID) {
		chat.ChatAdmin = append(chat.ChatAdmin, userID)
	}
	chat.UpdatedAt = time.Now()
	clone := *chat
	return &clone, nil
}

func (r *memChatRepo) SetName(_ context.Context, chatID primitive.ObjectID, name string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return nil, chatlink_errors.ErrNotFound
	}
	chat.ChatName = name
	chat.UpdatedAt = time.Now()
	clone := *chat
	return &clone, nil
}

func (r *memChatRepo) SetLink(_ context.Context, chatID primitive.ObjectID, link string, expires time.Time) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return nil, chatlink_errors.ErrNotFound
	}
	chat.Link = link
	exp := expires
	chat.ExpirationDate = &exp
	chat.UpdatedAt = time.Now()
	clone := *chat
	return &clone, nil
}

func (r *memChatRepo) PullMember(_ context.Context, chatID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok || !chat.IsGroupChat {
		return nil
	}
	chat.Users = dropID(chat.Users, userID)
	chat.ChatAdmin = dropID(chat.ChatAdmin, userID)
	chat.UpdatedAt = time.Now()
	return nil
}

func dropID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now()
	if msg.ReadBy == nil {
		msg.ReadBy = []primitive.ObjectID{}
	}
	clone := *msg
	r.messages = append(r.messages, &clone)
	return nil
}

func (r *memMessageRepo) FindByChat(_ context.Context, chatID primitive.ObjectID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].Chat == chatID {
			out = append(out, *r.messages[i])
		}
	}
	return out, nil
}

func (r *memMessageRepo) AddReadBy(_ context.Context, messageID, readerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == messageID && !msg.ReadByUser(readerID) {
			msg.ReadBy = append(msg.ReadBy, readerID)
		}
	}
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return chatlink_errors.ErrAlreadyExists
		}
	}
	u.ID = primitive.NewObjectID()
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, chatlink_errors.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, chatlink_errors.ErrNotFound
}

func (r *memUserRepo) FindProfiles(_ context.Context, ids []primitive.ObjectID) ([]domain.PublicProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profiles := make([]domain.PublicProfile, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			profiles = append(profiles, u.Public())
		}
	}
	return profiles, nil
}

func (r *memUserRepo) SetProfilePic(_ context.Context, id primitive.ObjectID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return chatlink_errors.ErrNotFound
	}
	u.ProfilePic = url
	return nil
}

type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]string)}
}

func (s *memTokenStore) Save(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = userID
	return nil
}

func (s *memTokenStore) Get(_ context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[tokenHash]
	if !ok {
		return "", chatlink_errors.ErrUnauthorized
	}
	return userID, nil
}

func (s *memTokenStore) Delete(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenHash)
	return nil
}
