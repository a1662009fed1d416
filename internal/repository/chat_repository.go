package repository

import (
	"context"
	"errors"
	"time"

	"chatlink/internal/domain"
	"chatlink/pkg/database"
	chatlink_errors "chatlink/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoChatRepository struct {
	coll *mongo.Collection
}

func NewChatRepository(db *mongo.Database) ChatRepository {
	return &MongoChatRepository{coll: db.Collection(database.ChatCollection)}
}

func (r *MongoChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, chat)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		chat.ID = oid
	}
	return nil
}

func (r *MongoChatRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Chat, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoChatRepository) FindByLink(ctx context.Context, link string) (*domain.Chat, error) {
	return r.findOne(ctx, bson.M{"link": link})
}

func (r *MongoChatRepository) FindDirect(ctx context.Context, a, b primitive.ObjectID) (*domain.Chat, error) {
	return r.findOne(ctx, bson.M{
		"isGroupChat": false,
		"users":       bson.M{"$all": bson.A{a, b}},
	})
}

func (r *MongoChatRepository) FindByMember(ctx context.Context, userID primitive.ObjectID) ([]domain.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"users": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var chats []domain.Chat
	if err := cur.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *MongoChatRepository) AddUsers(ctx context.Context, chatID primitive.ObjectID, userIDs []primitive.ObjectID) (*domain.Chat, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": chatID}, bson.M{
		"$addToSet": bson.M{"users": bson.M{"$each": userIDs}},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (r *MongoChatRepository) AddAdmin(ctx context.Context, chatID, userID primitive.ObjectID) (*domain.Chat, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": chatID}, bson.M{
		"$addToSet": bson.M{"chatAdmin": userID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

func (r *MongoChatRepository) SetName(ctx context.Context, chatID primitive.ObjectID, name string) (*domain.Chat, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": chatID}, bson.M{
		"$set": bson.M{"chatName": name, "updatedAt": time.Now()},
	})
}

func (r *MongoChatRepository) SetLink(ctx context.Context, chatID primitive.ObjectID, link string, expires time.Time) (*domain.Chat, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": chatID}, bson.M{
		"$set": bson.M{"link": link, "expirationDate": expires, "updatedAt": time.Now()},
	})
}

func (r *MongoChatRepository) PullMember(ctx context.Context, chatID, userID primitive.ObjectID) error {
	filter := bson.M{"_id": chatID, "isGroupChat": true}
	update := bson.M{
		"$pull": bson.M{"users": userID, "chatAdmin": userID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *MongoChatRepository) findOne(ctx context.Context, filter bson.M) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.coll.FindOne(ctx, filter).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, chatlink_errors.ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (r *MongoChatRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Chat, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var chat domain.Chat
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, chatlink_errors.ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}
