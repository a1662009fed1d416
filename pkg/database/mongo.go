package database

import (
	"context"
	"log"
	"time"

	"chatlink/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client *mongo.Client
	db     *mongo.Database
)

const (
	ChatCollection    = "chats"
	MessageCollection = "messages"
	UserCollection    = "users"
)

func Connect(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to mongodb: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Failed to ping mongodb: %v", err)
	}

	db = client.Database(cfg.MongoDB)
	log.Println("Database connection established")
}

func DB() *mongo.Database {
	if db == nil {
		panic("database not connected. Call Connect() first")
	}
	return db
}

func HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx, readpref.Primary())
}

func Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the query paths depend on. Safe to call on
// every startup; mongo treats existing definitions as a no-op.
func EnsureIndexes(ctx context.Context) error {
	chatIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "users", Value: 1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "link", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	if _, err := db.Collection(ChatCollection).Indexes().CreateMany(ctx, chatIdx); err != nil {
		return err
	}

	messageIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(MessageCollection).Indexes().CreateMany(ctx, messageIdx); err != nil {
		return err
	}

	userIdx := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := db.Collection(UserCollection).Indexes().CreateMany(ctx, userIdx)
	return err
}
