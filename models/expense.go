package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ExpensePending  = "pending"
	ExpenseApproved = "approved"
	ExpenseRejected = "rejected"
)

// Expense is a spend record awaiting or past admin approval.
type Expense struct {
	ID            primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Title         string              `json:"title" bson:"title"`
	Amount        float64             `json:"amount" bson:"amount"`
	Category      string              `json:"category" bson:"category"`
	Description   string              `json:"description,omitempty" bson:"description,omitempty"`
	Date          time.Time           `json:"date" bson:"date"`
	Receipt       string              `json:"receipt,omitempty" bson:"receipt,omitempty"`
	Status        string              `json:"status" bson:"status"`
	ApprovedBy    *primitive.ObjectID `json:"-" bson:"approvedBy,omitempty"`
	ApprovedByRef *UserRef            `json:"approvedBy,omitempty" bson:"-"`
	Audit         `bson:",inline"`
}

// ExpenseInput is the create/update body. Status is only honored for admins.
type ExpenseInput struct {
	Title       *string    `json:"title" bson:"title,omitempty" create:"required" validate:"omitempty,min=1"`
	Amount      *FlexFloat `json:"amount" bson:"amount,omitempty" create:"required" validate:"omitempty,min=0"`
	Category    *string    `json:"category" bson:"category,omitempty" create:"required" validate:"omitempty,oneof=travel office marketing software other"`
	Description *string    `json:"description" bson:"description,omitempty"`
	Date        *FlexTime  `json:"date" bson:"date,omitempty" create:"required"`
	Receipt     *string    `json:"receipt" bson:"receipt,omitempty"`
	Status      *string    `json:"status" bson:"status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
}

// IsPending reports whether the expense still awaits a decision.
func (e *Expense) IsPending() bool {
	return e.Status == ExpensePending
}

func (e *Expense) DocumentID() primitive.ObjectID { return e.ID }

func (e *Expense) Prepare(owner primitive.ObjectID, now time.Time) {
	e.stamp(owner, now)
	e.Status = ExpensePending
	e.ApprovedBy = nil
}

func (e *Expense) CollectRefs(refs *RefSet) {
	refs.AddUser(&e.CreatedBy)
	refs.AddUser(e.ApprovedBy)
}

func (e *Expense) Expand(lookup Lookup) {
	e.CreatedByRef = lookup.User(&e.CreatedBy)
	e.ApprovedByRef = lookup.User(e.ApprovedBy)
}

func (in *ExpenseInput) Check() error {
	return requireDate("date", in.Date)
}
