package services

import (
	"context"
	"sync"
	"time"

	"chatlink/internal/domain"
	chatlink_errors "chatlink/pkg/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories mirroring the store's update semantics, so service
// tests run without mongo.

type fakeChatRepo struct {
	mu    sync.Mutex
	chats map[primitive.ObjectID]*domain.Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[primitive.ObjectID]*domain.Chat)}
}

func (r *fakeChatRepo) Create(_ context.Context, chat *domain.Chat) error {
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

func (r *fakeChatRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, chatlink_errors.ErrNotFound
	}
	clone := *chat
	return &clone, nil
}

func (r *fakeChatRepo) FindByLink(_ context.Context, link string) (*domain.Chat, error) {
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

func (r *fakeChatRepo) FindDirect(_ context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
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

func (r *fakeChatRepo) FindByMember(_ context.Context, userID primitive.ObjectID) ([]domain.Chat, error) {
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

func (r *fakeChatRepo) AddUsers(_ context.Context, chatID primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Chat, error) {
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

func (r *fakeChatRepo) AddAdmin(_ context.Context, chatID, userID primitive.ObjectID) (*domain.Chat, error) {
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

func (r *fakeChatRepo) SetName(_ context.Context, chatID primitive.ObjectID, name string) (*domain.Chat, error) {
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

func (r *fakeChatRepo) SetLink(_ context.Context, chatID primitive.ObjectID, link string, expires time.Time) (*domain.Chat, error) {
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

func (r *fakeChatRepo) PullMember(_ context.Context, chatID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok || !chat.IsGroupChat {
		return nil
	}
	chat.Users = removeID(chat.Users, userID)
	chat.ChatAdmin = removeID(chat.ChatAdmin, userID)
	chat.UpdatedAt = time.Now()
	return nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
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

func (r *fakeMessageRepo) FindByChat(_ context.Context, chatID primitive.ObjectID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Reverse insertion order stands in for the createdAt descending sort.
	var out []domain.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].Chat == chatID {
			out = append(out, *r.messages[i])
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) AddReadBy(_ context.Context, messageID, readerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == messageID && !msg.ReadByUser(readerID) {
			msg.ReadBy = append(msg.ReadBy, readerID)
		}
	}
	return nil
}

func (r *fakeMessageRepo) byID(id primitive.ObjectID) *domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == id {
			clone := *msg
			return &clone
		}
	}
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
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

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, chatlink_errors.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
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

func (r *fakeUserRepo) FindProfiles(_ context.Context, ids []primitive.ObjectID) ([]domain.PublicProfile, error) {
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

func (r *fakeUserRepo) SetProfilePic(_ context.Context, id primitive.ObjectID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return chatlink_errors.ErrNotFound
	}
	u.ProfilePic = url
	return nil
}

// addUser seeds a user directly, bypassing registration.
func (r *fakeUserRepo) addUser(username string) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	r.users[id] = &domain.User{ID: id, Username: username}
	return id
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]string)}
}

func (s *fakeTokenStore) Save(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = userID
	return nil
}

func (s *fakeTokenStore) Get(_ context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[tokenHash]
	if !ok {
		return "", chatlink_errors.ErrUnauthorized
	}
	return userID, nil
}

func (s *fakeTokenStore) Delete(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenHash)
	return nil
}
