package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository is typed access to one collection of T documents.
type Repository[T any] struct {
	collection Collection
}

func NewRepository[T any](store Store, name string) *Repository[T] {
	return &Repository[T]{collection: store.Collection(name)}
}

// List returns matching documents in the given order; never nil.
func (r *Repository[T]) List(ctx context.Context, filter bson.M, sort bson.D) ([]*T, error) {
	var docs []*T
	if err := r.collection.Find(ctx, filter, sort, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []*T{}
	}
	return docs, nil
}

// FindOne returns the first matching document or ErrNotFound.
func (r *Repository[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	if err := r.collection.FindOne(ctx, filter, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByIDs returns the documents with the given ids, in no particular order.
func (r *Repository[T]) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}
	return r.List(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *Repository[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	return r.collection.InsertOne(ctx, doc)
}

// Update sets fields on the first matching document. It returns ErrNotFound
// when nothing matches.
func (r *Repository[T]) Update(ctx context.Context, filter bson.M, set bson.M) error {
	matched, err := r.collection.UpdateOne(ctx, filter, set)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[T]) UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	return r.collection.UpdateMany(ctx, filter, set)
}

// Delete removes the first matching document. It returns ErrNotFound when
// nothing matches.
func (r *Repository[T]) Delete(ctx context.Context, filter bson.M) error {
	deleted, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
