package repository

import (
	"context"
	"time"

	"chatlink/internal/domain"
	"chatlink/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoMessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &MongoMessageRepository{coll: db.Collection(database.MessageCollection)}
}

func (r *MongoMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	msg.CreatedAt = time.Now()
	if msg.ReadBy == nil {
		msg.ReadBy = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid
	}
	return nil
}

func (r *MongoMessageRepository) FindByChat(ctx context.Context, chatID primitive.ObjectID) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"chat": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MongoMessageRepository) AddReadBy(ctx context.Context, messageID, readerID primitive.ObjectID) error {
	// The $ne filter makes the update a no-op when the reader is already
	// recorded; matching zero documents is still success.
	filter := bson.M{"_id": messageID, "readBy": bson.M{"$ne": readerID}}
	update := bson.M{"$addToSet": bson.M{"readBy": readerID}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}
