package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message belongs to exactly one chat. ReadBy grows monotonically and never
// holds the same user twice.
type Message struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Sender    primitive.ObjectID   `bson:"sender" json:"sender"`
	Chat      primitive.ObjectID   `bson:"chat" json:"chatId"`
	Content   string               `bson:"content" json:"content"`
	ReadBy    []primitive.ObjectID `bson:"readBy" json:"readBy"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

func (m *Message) ReadByUser(id primitive.ObjectID) bool {
	return containsID(m.ReadBy, id)
}
