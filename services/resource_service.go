package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
)

// ResourceService implements list, create, update and delete for one CRM
// collection. T is the stored document, PT its pointer type, and I the
// request body.
type ResourceService[T any, PT interface {
	*T
	models.Document
}, I any] struct {
	name      string
	repo      *repositories.Repository[T]
	policy    AccessPolicy[T]
	populator *Populator
	validator *InputValidator
	now       func() time.Time
}

func NewResourceService[T any, PT interface {
	*T
	models.Document
}, I any](name string, repo *repositories.Repository[T], policy AccessPolicy[T], populator *Populator, validator *InputValidator) *ResourceService[T, PT, I] {
	return &ResourceService[T, PT, I]{
		name:      name,
		repo:      repo,
		policy:    policy,
		populator: populator,
		validator: validator,
		now:       time.Now,
	}
}

// Name is the display name used in not-found messages.
func (s *ResourceService[T, PT, I]) Name() string {
	return s.name
}

// List returns the visible records, newest first, with references expanded.
func (s *ResourceService[T, PT, I]) List(ctx context.Context, p *models.Principal) ([]PT, error) {
	docs, err := s.repo.List(ctx, s.policy.listFilter(p), repositories.SortNewestFirst)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.name, err)
	}
	out := make([]PT, len(docs))
	expandable := make([]models.Expandable, len(docs))
	for i, d := range docs {
		out[i] = PT(d)
		expandable[i] = PT(d)
	}
	if err := s.populator.Expand(ctx, expandable...); err != nil {
		return nil, err
	}
	return out, nil
}

// Create validates the input, stamps ownership and defaults, and stores it.
func (s *ResourceService[T, PT, I]) Create(ctx context.Context, p *models.Principal, in *I) (PT, error) {
	if err := s.validator.ValidateCreate(in); err != nil {
		return nil, err
	}
	var doc T
	if err := convertInput(in, &doc); err != nil {
		return nil, err
	}
	PT(&doc).Prepare(p.ID, s.now())

	id, err := s.repo.Insert(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", s.name, err)
	}
	return s.load(ctx, bson.M{"_id": id})
}

// Update applies the fields present in the input to a record in scope.
func (s *ResourceService[T, PT, I]) Update(ctx context.Context, p *models.Principal, id string, in *I) (PT, error) {
	filter, err := s.scope(p, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	current, err := s.find(ctx, filter)
	if err != nil {
		return nil, err
	}

	set, err := encodePatch(in)
	if err != nil {
		return nil, err
	}
	if adjuster, ok := any(in).(models.PatchAdjuster); ok {
		adjuster.AdjustPatch(set)
	}
	if s.policy.CheckUpdate != nil {
		if err := s.policy.CheckUpdate(p, current, set); err != nil {
			return nil, err
		}
	}
	set["updatedAt"] = s.now()

	if err := s.repo.Update(ctx, filter, set); err != nil {
		return nil, s.storeError("update", err)
	}
	return s.load(ctx, filter)
}

// Delete removes a record in scope.
func (s *ResourceService[T, PT, I]) Delete(ctx context.Context, p *models.Principal, id string) error {
	filter, err := s.scope(p, id)
	if err != nil {
		return err
	}
	current, err := s.find(ctx, filter)
	if err != nil {
		return err
	}
	if s.policy.CheckDelete != nil {
		if err := s.policy.CheckDelete(p, current); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, filter); err != nil {
		return s.storeError("delete", err)
	}
	return nil
}

func (s *ResourceService[T, PT, I]) scope(p *models.Principal, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &models.ErrNotFound{Resource: s.name}
	}
	return s.policy.scope(p, oid), nil
}

func (s *ResourceService[T, PT, I]) find(ctx context.Context, filter bson.M) (*T, error) {
	doc, err := s.repo.FindOne(ctx, filter)
	if err != nil {
		return nil, s.storeError("find", err)
	}
	return doc, nil
}

func (s *ResourceService[T, PT, I]) load(ctx context.Context, filter bson.M) (PT, error) {
	doc, err := s.find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := PT(doc)
	if err := s.populator.Expand(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ResourceService[T, PT, I]) storeError(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.ErrNotFound{Resource: s.name}
	}
	return fmt.Errorf("%s %s: %w", op, s.name, err)
}

// convertInput copies the fields set in a request body onto a new document.
func convertInput(in interface{}, doc interface{}) error {
	raw, err := bson.Marshal(in)
	if err != nil {
		return &models.ErrValidation{Message: err.Error()}
	}
	if err := bson.Unmarshal(raw, doc); err != nil {
		return &models.ErrValidation{Message: err.Error()}
	}
	return nil
}

// encodePatch turns a request body into a $set document of the fields present.
func encodePatch(in interface{}) (bson.M, error) {
	raw, err := bson.Marshal(in)
	if err != nil {
		return nil, &models.ErrValidation{Message: err.Error()}
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, &models.ErrValidation{Message: err.Error()}
	}
	return set, nil
}
