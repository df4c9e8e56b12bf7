package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead is a sales prospect.
type Lead struct {
	ID                primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Name              string              `json:"name" bson:"name"`
	Email             string              `json:"email,omitempty" bson:"email,omitempty"`
	Phone             string              `json:"phone" bson:"phone"`
	Company           string              `json:"company,omitempty" bson:"company,omitempty"`
	JobTitle          string              `json:"jobTitle,omitempty" bson:"jobTitle,omitempty"`
	Source            string              `json:"source" bson:"source"`
	Status            string              `json:"status" bson:"status"`
	Priority          string              `json:"priority" bson:"priority"`
	EstimatedValue    float64             `json:"estimatedValue" bson:"estimatedValue"`
	Probability       float64             `json:"probability" bson:"probability"`
	LeadScore         float64             `json:"leadScore" bson:"leadScore"`
	Industry          string              `json:"industry,omitempty" bson:"industry,omitempty"`
	Notes             string              `json:"notes,omitempty" bson:"notes,omitempty"`
	Tags              []string            `json:"tags" bson:"tags"`
	LeadDate          *time.Time          `json:"leadDate,omitempty" bson:"leadDate,omitempty"`
	ExpectedCloseDate *time.Time          `json:"expectedCloseDate,omitempty" bson:"expectedCloseDate,omitempty"`
	LastContactDate   *time.Time          `json:"lastContactDate,omitempty" bson:"lastContactDate,omitempty"`
	NextFollowUp      *time.Time          `json:"nextFollowUp,omitempty" bson:"nextFollowUp,omitempty"`
	FollowUpDate      *time.Time          `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
	AssignedTo        *primitive.ObjectID `json:"-" bson:"assignedTo,omitempty"`
	AssignedToRef     *UserRef            `json:"assignedTo" bson:"-"`
	Audit             `bson:",inline"`
}

// LeadInput is the create/update body. Absent fields are left untouched on update.
type LeadInput struct {
	Name              *string    `json:"name" bson:"name,omitempty" create:"required" validate:"omitempty,min=1"`
	Email             *string    `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
	Phone             *string    `json:"phone" bson:"phone,omitempty" create:"required" validate:"omitempty,min=1"`
	Company           *string    `json:"company" bson:"company,omitempty"`
	JobTitle          *string    `json:"jobTitle" bson:"jobTitle,omitempty"`
	Source            *string    `json:"source" bson:"source,omitempty" validate:"omitempty,oneof=website referral social email cold-call trade-show other"`
	Status            *string    `json:"status" bson:"status,omitempty" validate:"omitempty,oneof=new contacted qualified proposal-sent negotiation converted lost"`
	Priority          *string    `json:"priority" bson:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	EstimatedValue    *FlexFloat `json:"estimatedValue" bson:"estimatedValue,omitempty" validate:"omitempty,min=0"`
	Probability       *FlexFloat `json:"probability" bson:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	LeadScore         *FlexFloat `json:"leadScore" bson:"leadScore,omitempty" validate:"omitempty,min=0,max=100"`
	Industry          *string    `json:"industry" bson:"industry,omitempty"`
	Notes             *string    `json:"notes" bson:"notes,omitempty"`
	Tags              []string   `json:"tags" bson:"tags,omitempty"`
	LeadDate          *FlexTime  `json:"leadDate" bson:"leadDate,omitempty"`
	ExpectedCloseDate *FlexTime  `json:"expectedCloseDate" bson:"expectedCloseDate,omitempty"`
	LastContactDate   *FlexTime  `json:"lastContactDate" bson:"lastContactDate,omitempty"`
	NextFollowUp      *FlexTime  `json:"nextFollowUp" bson:"nextFollowUp,omitempty"`
	FollowUpDate      *FlexTime  `json:"followUpDate" bson:"followUpDate,omitempty"`
	AssignedTo        *FlexID    `json:"assignedTo" bson:"assignedTo,omitempty"`
}

func (l *Lead) DocumentID() primitive.ObjectID { return l.ID }

func (l *Lead) Prepare(owner primitive.ObjectID, now time.Time) {
	l.stamp(owner, now)
	defaultString(&l.Source, "other")
	defaultString(&l.Status, "new")
	defaultString(&l.Priority, "medium")
	if l.Tags == nil {
		l.Tags = []string{}
	}
}

func (l *Lead) CollectRefs(refs *RefSet) {
	refs.AddUser(l.AssignedTo)
	refs.AddUser(&l.CreatedBy)
}

func (l *Lead) Expand(lookup Lookup) {
	l.AssignedToRef = lookup.User(l.AssignedTo)
	l.CreatedByRef = lookup.User(&l.CreatedBy)
}

// AdjustPatch keeps a tag list cleared to empty in the update.
func (in *LeadInput) AdjustPatch(set bson.M) {
	if in.Tags != nil && len(in.Tags) == 0 {
		set["tags"] = bson.A{}
	}
}
