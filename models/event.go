package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a calendar entry visible only to its creator.
type Event struct {
	ID           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Title        string               `json:"title" bson:"title"`
	Description  string               `json:"description,omitempty" bson:"description,omitempty"`
	Date         time.Time            `json:"date" bson:"date"`
	Time         string               `json:"time,omitempty" bson:"time,omitempty"`
	Type         string               `json:"type" bson:"type"`
	Attendees    []primitive.ObjectID `json:"-" bson:"attendees"`
	AttendeeRefs []*UserRef           `json:"attendees" bson:"-"`
	Audit        `bson:",inline"`
}

// EventInput is the create/update body.
type EventInput struct {
	Title       *string   `json:"title" bson:"title,omitempty" create:"required" validate:"omitempty,min=1"`
	Description *string   `json:"description" bson:"description,omitempty"`
	Date        *FlexTime `json:"date" bson:"date,omitempty" create:"required"`
	Time        *string   `json:"time" bson:"time,omitempty"`
	Type        *string   `json:"type" bson:"type,omitempty" validate:"omitempty,oneof=meeting call deadline task"`
	Attendees   []FlexID  `json:"attendees" bson:"attendees,omitempty"`
}

// Check drops empty attendee references picked in the form and rejects a
// cleared date.
func (in *EventInput) Check() error {
	in.Attendees = CompactIDs(in.Attendees)
	return requireDate("date", in.Date)
}

// AdjustPatch keeps an attendee list cleared to empty in the update.
func (in *EventInput) AdjustPatch(set bson.M) {
	if in.Attendees != nil && len(in.Attendees) == 0 {
		set["attendees"] = bson.A{}
	}
}

func (e *Event) DocumentID() primitive.ObjectID { return e.ID }

func (e *Event) Prepare(owner primitive.ObjectID, now time.Time) {
	e.stamp(owner, now)
	defaultString(&e.Type, "meeting")
	if e.Attendees == nil {
		e.Attendees = []primitive.ObjectID{}
	}
}

func (e *Event) CollectRefs(refs *RefSet) {
	refs.AddUser(&e.CreatedBy)
	for i := range e.Attendees {
		refs.AddUser(&e.Attendees[i])
	}
}

// Expand resolves attendees; attendees whose user no longer exists are dropped.
func (e *Event) Expand(lookup Lookup) {
	e.CreatedByRef = lookup.User(&e.CreatedBy)
	e.AttendeeRefs = make([]*UserRef, 0, len(e.Attendees))
	for i := range e.Attendees {
		if ref := lookup.User(&e.Attendees[i]); ref != nil {
			e.AttendeeRefs = append(e.AttendeeRefs, ref)
		}
	}
}
