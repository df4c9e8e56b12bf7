// config/db.go
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const devMongoURI = "mongodb://localhost:27017"

// ConnectDB establishes connection to MongoDB and ensures indexes exist
func ConnectDB(cfg *Config, logger *zap.Logger) (*mongo.Client, error) {
	mongoURI := cfg.MongoURI
	if mongoURI == "" {
		mongoURI = devMongoURI
	}

	logger.Info("connecting to MongoDB", zap.String("uri", maskMongoURI(mongoURI)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", cfg.DBName))

	setupCollections(client.Database(cfg.DBName), logger)
	return client, nil
}

// setupCollections ensures the indexes the CRM queries rely on
func setupCollections(db *mongo.Database, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"leads":        {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		"clients":      {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		"developments": {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		"expenses": {
			{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"events": {
			{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "date", Value: 1}}},
		},
		"messages": {
			{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "sender", Value: 1}}},
			{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "read", Value: 1}}},
		},
	}

	for collName, models := range indexes {
		if _, err := db.Collection(collName).Indexes().CreateMany(ctx, models); err != nil {
			logger.Warn("creating indexes failed", zap.String("collection", collName), zap.Error(err))
		}
	}

	logger.Info("database indexes setup complete")
}

// maskMongoURI masks the password in a MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
