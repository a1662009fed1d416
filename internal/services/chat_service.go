package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatlink/config"
	"chatlink/internal/domain"
	"chatlink/internal/repository"
	chatlink_errors "chatlink/pkg/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileCache is the read-through cache used when populating chat members.
// A nil cache is valid; every lookup then goes to the store.
type ProfileCache interface {
	Get(ctx context.Context, id primitive.ObjectID) (*domain.PublicProfile, bool)
	Set(ctx context.Context, p domain.PublicProfile)
}

type ChatService struct {
	chats    repository.ChatRepository
	users    repository.UserRepository
	profiles ProfileCache
	linkBase string
}

func NewChatService(chats repository.ChatRepository, users repository.UserRepository, profiles ProfileCache, cfg *config.Config) *ChatService {
	return &ChatService{
		chats:    chats,
		users:    users,
		profiles: profiles,
		linkBase: cfg.LinkBaseURL,
	}
}

type CreateChatInput struct {
	ChatName    string
	IsGroupChat bool
	Members     []primitive.ObjectID
	ChatAdmin   []primitive.ObjectID
	Status      string
}

// ChatDetail is a chat with its member and admin sets populated with public
// profiles.
type ChatDetail struct {
	domain.Chat
	Users     []domain.PublicProfile `json:"users"`
	ChatAdmin []domain.PublicProfile `json:"chatAdmin"`
}

// ChatSummary is a chat annotated with the profiles of every member other
// than the caller, for the chat-list view.
type ChatSummary struct {
	domain.Chat
	Others []domain.PublicProfile `json:"others"`
}

// ListChats returns every chat the caller belongs to, most recently updated
// first. An empty result is an empty slice, not an error.
func (s *ChatService) ListChats(ctx context.Context, caller primitive.ObjectID) ([]ChatSummary, error) {
	chats, err := s.chats.FindByMember(ctx, caller)
	if err != nil {
		return nil, err
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		others := make([]primitive.ObjectID, 0, len(chat.Users))
		for _, id := range chat.Users {
			if id != caller {
				others = append(others, id)
			}
		}
		profiles, err := s.resolveProfiles(ctx, others)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ChatSummary{Chat: chat, Others: profiles})
	}
	return summaries, nil
}

func (s *ChatService) CreateChat(ctx context.Context, caller primitive.ObjectID, in CreateChatInput) (*ChatDetail, error) {
	if len(in.Members) == 0 || len(in.ChatAdmin) == 0 {
		return nil, fmt.Errorf("members and chatAdmin are required: %w", chatlink_errors.ErrInvalidInput)
	}
	if in.IsGroupChat && in.ChatName == "" {
		return nil, fmt.Errorf("chat name is required for a group chat: %w", chatlink_errors.ErrInvalidInput)
	}

	users := dedupIDs(append([]primitive.ObjectID{caller}, in.Members...))
	if in.IsGroupChat && len(users) < 2 {
		return nil, fmt.Errorf("at least 2 users are required to form a group chat: %w", chatlink_errors.ErrInvalidInput)
	}

	if !in.IsGroupChat {
		if len(in.Members) > 1 {
			return nil, fmt.Errorf("a direct chat cannot have more than one other member: %w", chatlink_errors.ErrInvalidInput)
		}
		if len(users) != 2 {
			return nil, fmt.Errorf("a direct chat needs exactly one other member: %w", chatlink_errors.ErrInvalidInput)
		}
		_, err := s.chats.FindDirect(ctx, caller, in.Members[0])
		if err == nil {
			return nil, fmt.Errorf("chat already exists: %w", chatlink_errors.ErrAlreadyExists)
		}
		if !errors.Is(err, chatlink_errors.ErrNotFound) {
			return nil, err
		}
	}

	admins := dedupIDs(in.ChatAdmin)
	for _, admin := range admins {
		if !containsID(users, admin) {
			return nil, fmt.Errorf("chat admins must be chat members: %w", chatlink_errors.ErrInvalidInput)
		}
	}

	name := ""
	if in.IsGroupChat {
		name = in.ChatName
	}
	chat := &domain.Chat{
		ChatName:    name,
		IsGroupChat: in.IsGroupChat,
		Users:       users,
		ChatAdmin:   admins,
		Status:      in.Status,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}

	return s.populate(ctx, chat)
}

// AddUsersToGroup appends the given users to a group chat. Only an admin may
// do this; ids that are already members are skipped.
func (s *ChatService) AddUsersToGroup(ctx context.Context, caller, chatID primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Chat, error) {
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("user ids are required: %w", chatlink_errors.ErrInvalidInput)
	}

	chat, err := s.groupChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasAdmin(caller) {
		return nil, fmt.Errorf("you are not an admin in this group: %w", chatlink_errors.ErrUnauthorized)
	}

	newIDs := make([]primitive.ObjectID, 0, len(userIDs))
	for _, id := range dedupIDs(userIDs) {
		if !chat.HasMember(id) {
			newIDs = append(newIDs, id)
		}
	}
	if len(newIDs) == 0 {
		return nil, fmt.Errorf("all users already exist in this chat: %w", chatlink_errors.ErrInvalidInput)
	}

	return s.chats.AddUsers(ctx, chatID, newIDs)
}

// RedeemLink adds a user to the chat behind an invite link. Possession of a
// valid, unexpired link is the only credential checked.
func (s *ChatService) RedeemLink(ctx context.Context, link string, userID primitive.ObjectID) (*domain.Chat, error) {
	chat, err := s.chats.FindByLink(ctx, link)
	if err != nil {
		return nil, err
	}
	if chat.LinkExpired(time.Now()) {
		return nil, fmt.Errorf("this link expired, contact an admin of the group: %w", chatlink_errors.ErrLinkExpired)
	}
	if chat.HasMember(userID) {
		return nil, fmt.Errorf("you are already a member of this group: %w", chatlink_errors.ErrAlreadyExists)
	}

	return s.chats.AddUsers(ctx, chat.ID, []primitive.ObjectID{userID})
}

func (s *ChatService) RenameGroup(ctx context.Context, caller, chatID primitive.ObjectID, updatedName string) (*domain.Chat, error) {
	if updatedName == "" {
		return nil, fmt.Errorf("updated name is required: %w", chatlink_errors.ErrInvalidInput)
	}

	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasAdmin(caller) {
		return nil, fmt.Errorf("you are not an admin in this chat: %w", chatlink_errors.ErrUnauthorized)
	}

	return s.chats.SetName(ctx, chatID, updatedName)
}

// RemoveFromChat removes a member from a group chat, revoking any admin role
// in the same update.
func (s *ChatService) RemoveFromChat(ctx context.Context, caller, chatID, deletedUserID primitive.ObjectID) error {
	chat, err := s.groupChat(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasMember(deletedUserID) {
		return fmt.Errorf("user is not a member of this chat: %w", chatlink_errors.ErrInvalidInput)
	}
	if !chat.HasAdmin(caller) {
		return fmt.Errorf("you are not an admin in this chat: %w", chatlink_errors.ErrUnauthorized)
	}

	return s.chats.PullMember(ctx, chatID, deletedUserID)
}

// ExitChat removes the caller from a group chat's member and admin sets.
// Exiting a direct chat is a silent no-op.
func (s *ChatService) ExitChat(ctx context.Context, caller, chatID primitive.ObjectID) error {
	if _, err := s.chats.FindByID(ctx, chatID); err != nil {
		return err
	}
	return s.chats.PullMember(ctx, chatID, caller)
}

func (s *ChatService) AddAdmin(ctx context.Context, caller, chatID, userID primitive.ObjectID) (*domain.Chat, error) {
	chat, err := s.groupChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasAdmin(caller) {
		return nil, fmt.Errorf("you are not an admin in this chat: %w", chatlink_errors.ErrUnauthorized)
	}
	if !chat.HasMember(userID) {
		return nil, fmt.Errorf("user not found in this chat: %w", chatlink_errors.ErrNotFound)
	}
	if chat.HasAdmin(userID) {
		return nil, fmt.Errorf("user is already an admin: %w", chatlink_errors.ErrAlreadyExists)
	}

	return s.chats.AddAdmin(ctx, chatID, userID)
}

// CreateGroupLink issues a fresh invite link, replacing any previous one.
// The expiration defaults to three months out when the caller supplies none.
func (s *ChatService) CreateGroupLink(ctx context.Context, caller, chatID primitive.ObjectID, expiration *time.Time) (*domain.Chat, error) {
	chat, err := s.groupChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasAdmin(caller) {
		return nil, fmt.Errorf("you are not an admin in this chat: %w", chatlink_errors.ErrUnauthorized)
	}

	link := fmt.Sprintf("%s/%s", s.linkBase, uuid.New().String())
	expires := time.Now().AddDate(0, 3, 0)
	if expiration != nil {
		expires = *expiration
	}

	return s.chats.SetLink(ctx, chatID, link, expires)
}

// groupChat loads a chat and requires it to be a group chat. A missing chat
// and a direct chat are distinct failures.
func (s *ChatService) groupChat(ctx context.Context, chatID primitive.ObjectID) (*domain.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroupChat {
		return nil, fmt.Errorf("this is not a group chat: %w", chatlink_errors.ErrInvalidInput)
	}
	return chat, nil
}

func (s *ChatService) populate(ctx context.Context, chat *domain.Chat) (*ChatDetail, error) {
	users, err := s.resolveProfiles(ctx, chat.Users)
	if err != nil {
		return nil, err
	}
	admins, err := s.resolveProfiles(ctx, chat.ChatAdmin)
	if err != nil {
		return nil, err
	}
	return &ChatDetail{Chat: *chat, Users: users, ChatAdmin: admins}, nil
}

// resolveProfiles maps ids to public profiles, serving from the cache where
// possible and batch-loading the rest. Order follows the input ids; unknown
// ids are skipped.
func (s *ChatService) resolveProfiles(ctx context.Context, ids []primitive.ObjectID) ([]domain.PublicProfile, error) {
	found := make(map[primitive.ObjectID]domain.PublicProfile, len(ids))
	var misses []primitive.ObjectID
	for _, id := range ids {
		if s.profiles != nil {
			if p, ok := s.profiles.Get(ctx, id); ok {
				found[id] = *p
				continue
			}
		}
		misses = append(misses, id)
	}

	if len(misses) > 0 {
		profiles, err := s.users.FindProfiles(ctx, misses)
		if err != nil {
			return nil, err
		}
		for _, p := range profiles {
			found[p.ID] = p
			if s.profiles != nil {
				s.profiles.Set(ctx, p)
			}
		}
	}

	result := make([]domain.PublicProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func dedupIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
