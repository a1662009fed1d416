package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is either a two-party direct chat or a named group chat. Users and
// ChatAdmin are sets: writes go through $addToSet/$pull so an id appears at
// most once, and ChatAdmin is always a subset of Users.
type Chat struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ChatName       string               `bson:"chatName,omitempty" json:"chatName,omitempty"`
	IsGroupChat    bool                 `bson:"isGroupChat" json:"isGroupChat"`
	Users          []primitive.ObjectID `bson:"users" json:"users"`
	ChatAdmin      []primitive.ObjectID `bson:"chatAdmin" json:"chatAdmin"`
	Link           string               `bson:"link,omitempty" json:"link,omitempty"`
	ExpirationDate *time.Time           `bson:"expirationDate,omitempty" json:"expirationDate,omitempty"`
	Status         string               `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (c *Chat) HasMember(id primitive.ObjectID) bool {
	return containsID(c.Users, id)
}

func (c *Chat) HasAdmin(id primitive.ObjectID) bool {
	return containsID(c.ChatAdmin, id)
}

// LinkExpired reports whether the invite link can no longer be redeemed at
// the given instant. A chat without a link is never redeemable, so it counts
// as expired.
func (c *Chat) LinkExpired(now time.Time) bool {
	if c.Link == "" || c.ExpirationDate == nil {
		return true
	}
	return now.After(*c.ExpirationDate)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
