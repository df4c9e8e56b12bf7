package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	UsersCollection        = "users"
	LeadsCollection        = "leads"
	ClientsCollection      = "clients"
	DevelopmentsCollection = "developments"
	ExpensesCollection     = "expenses"
	EventsCollection       = "events"
	MessagesCollection     = "messages"
)

var (
	// ErrNotFound is returned when no document matches a single-document query.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned when a write violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Collection is the subset of document-store operations the CRM uses.
// Filters use MongoDB query syntax; the in-memory store supports equality,
// $ne, $in and $or.
type Collection interface {
	// Find decodes every matching document into results, a pointer to a slice.
	Find(ctx context.Context, filter bson.M, sort bson.D, results interface{}) error
	// FindOne decodes the first matching document into result or returns ErrNotFound.
	FindOne(ctx context.Context, filter bson.M, result interface{}) error
	InsertOne(ctx context.Context, doc interface{}) (primitive.ObjectID, error)
	// UpdateOne applies set to the first matching document and reports whether one matched.
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (bool, error)
	UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error)
	// DeleteOne removes the first matching document and reports whether one matched.
	DeleteOne(ctx context.Context, filter bson.M) (bool, error)
}

// Store hands out collections of one database.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
}

// SortNewestFirst orders documents by creation time, newest first.
var SortNewestFirst = bson.D{{Key: "createdAt", Value: -1}}

// SortOldestFirst orders documents by creation time, oldest first.
var SortOldestFirst = bson.D{{Key: "createdAt", Value: 1}}
