package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
)

var errUserExists = &models.ErrConflict{Message: "User already exists"}

// UserService manages accounts on behalf of admins and the caller's own profile.
type UserService struct {
	users     *repositories.UserRepository
	validator *InputValidator
	mailer    Mailer
	logger    *zap.Logger
}

func NewUserService(users *repositories.UserRepository, validator *InputValidator, mailer Mailer, logger *zap.Logger) *UserService {
	return &UserService{users: users, validator: validator, mailer: mailer, logger: logger}
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx, bson.M{}, repositories.SortNewestFirst)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create adds an account and sends the welcome mail in the background.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	req.Email = repositories.NormalizeEmail(req.Email)
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}
	user, err := s.insert(ctx, req)
	if err != nil {
		return nil, err
	}

	go func(to, name string) {
		mailCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendWelcome(mailCtx, to, name); err != nil {
			s.logger.Warn("welcome mail failed", zap.String("to", to), zap.Error(err))
		}
	}(user.Email, user.Name)

	return user, nil
}

func (s *UserService) insert(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	email := repositories.NormalizeEmail(req.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, errUserExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleStaff
	}
	now := time.Now()
	user := &models.User{
		Name:      req.Name,
		Email:     email,
		Password:  hash,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, errUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	user.ID = id
	return user, nil
}

// Update changes name, email, role or active flag.
func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.ErrNotFound{Resource: "User"}
	}
	if req.Email != nil {
		email := repositories.NormalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	set, err := encodePatch(&req)
	if err != nil {
		return nil, err
	}
	set["updatedAt"] = time.Now()

	if err := s.users.Update(ctx, bson.M{"_id": oid}, set); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, &models.ErrNotFound{Resource: "User"}
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, &models.ErrConflict{Message: "Email already in use"}
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.get(ctx, oid)
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &models.ErrNotFound{Resource: "User"}
	}
	if err := s.users.Delete(ctx, bson.M{"_id": oid}); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.ErrNotFound{Resource: "User"}
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Contacts lists everyone the principal can message.
func (s *UserService) Contacts(ctx context.Context, p *models.Principal) ([]*models.UserRef, error) {
	users, err := s.users.ListExcept(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	refs := make([]*models.UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, u.Ref())
	}
	return refs, nil
}

// SetProfilePhoto records the public path of the principal's photo.
func (s *UserService) SetProfilePhoto(ctx context.Context, p *models.Principal, photoURL string) error {
	if p.BreakGlass {
		return &models.ErrForbidden{Message: "Break-glass account has no profile"}
	}
	if err := s.users.UpdateProfilePhoto(ctx, p.ID, photoURL); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.ErrNotFound{Resource: "User"}
		}
		return fmt.Errorf("update profile photo: %w", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin when no account uses its email.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}
	user, err := s.insert(ctx, models.CreateUserRequest{Name: name, Email: email, Password: password, Role: models.RoleAdmin})
	if err != nil {
		var conflict *models.ErrConflict
		if errors.As(err, &conflict) {
			return nil
		}
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", user.Email))
	return nil
}

func (s *UserService) get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &models.ErrNotFound{Resource: "User"}
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
