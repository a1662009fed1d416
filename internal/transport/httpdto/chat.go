package httpdto

import "time"

type CreateChatRequest struct {
	ChatName    string   `json:"chatName"`
	IsGroupChat *bool    `json:"isGroupChat"`
	Members     []string `json:"members"`
	ChatAdmin   []string `json:"chatAdmin"`
	Status      string   `json:"status"`
}

// AddUserRequest serves both modes of the add endpoint: a plain admin add
// when Link is empty, a link redemption otherwise. Redemption takes exactly
// one user id.
type AddUserRequest struct {
	UserIDs []string `json:"userIds"`
	Link    string   `json:"link"`
}

type RenameGroupRequest struct {
	UpdatedName string `json:"updatedName"`
}

type RemoveFromChatRequest struct {
	ChatID        string `json:"chatId"`
	DeletedUserID string `json:"deletedUserId"`
}

type ExitChatRequest struct {
	ChatID string `json:"chatId"`
}

type CreateLinkRequest struct {
	ExpirationDate *time.Time `json:"expirationDate"`
}
