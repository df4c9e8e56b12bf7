package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a CRM record managed through the generic resource service.
type Document interface {
	Expandable
	DocumentID() primitive.ObjectID
	Owner() primitive.ObjectID
	// Prepare stamps ownership and timestamps and fills defaults before insert.
	Prepare(owner primitive.ObjectID, now time.Time)
}

// Audit carries the creator and timestamps shared by every CRM record.
type Audit struct {
	CreatedBy    primitive.ObjectID `json:"-" bson:"createdBy"`
	CreatedByRef *UserRef           `json:"createdBy" bson:"-"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (a *Audit) Owner() primitive.ObjectID {
	return a.CreatedBy
}

func (a *Audit) stamp(owner primitive.ObjectID, now time.Time) {
	a.CreatedBy = owner
	a.CreatedAt = now
	a.UpdatedAt = now
}

func defaultString(s *string, v string) {
	if *s == "" {
		*s = v
	}
}

// InputChecker is implemented by inputs with rules the struct tags cannot express.
type InputChecker interface {
	Check() error
}

// PatchAdjuster is implemented by inputs whose update patch needs fields that
// omitempty would drop, such as a list cleared to empty.
type PatchAdjuster interface {
	AdjustPatch(set bson.M)
}

func requireDate(field string, t *FlexTime) error {
	if t != nil && t.Time.IsZero() {
		return &ErrValidation{Field: field, Message: "is required"}
	}
	return nil
}
