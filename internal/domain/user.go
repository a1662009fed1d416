package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	ProfilePic   string             `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicProfile is the projection exposed when a chat's members are
// populated. It never carries the password hash.
type PublicProfile struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Username   string             `bson:"username" json:"username"`
	ProfilePic string             `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, ProfilePic: u.ProfilePic}
}
