package repositories

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
)

// UserRepository is the identity store.
type UserRepository struct {
	*Repository[models.User]
}

func NewUserRepository(store Store) *UserRepository {
	return &UserRepository{Repository: NewRepository[models.User](store, UsersCollection)}
}

// FindByID returns the user with id or ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.FindOne(ctx, bson.M{"_id": id})
}

// FindByEmail looks a user up by email, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

// ListExcept returns every user but one, oldest first.
func (r *UserRepository) ListExcept(ctx context.Context, id primitive.ObjectID) ([]*models.User, error) {
	return r.List(ctx, bson.M{"_id": bson.M{"$ne": id}}, SortOldestFirst)
}

func (r *UserRepository) UpdateProfilePhoto(ctx context.Context, id primitive.ObjectID, photoURL string) error {
	return r.Update(ctx, bson.M{"_id": id}, bson.M{
		"profilePhoto": photoURL,
		"updatedAt":    time.Now(),
	})
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
