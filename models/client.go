package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is a customer with a contract and payment totals.
type Client struct {
	ID              primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Name            string              `json:"name" bson:"name"`
	Email           string              `json:"email,omitempty" bson:"email,omitempty"`
	Phone           string              `json:"phone" bson:"phone"`
	Company         string              `json:"company" bson:"company"`
	Industry        string              `json:"industry,omitempty" bson:"industry,omitempty"`
	Address         string              `json:"address,omitempty" bson:"address,omitempty"`
	ContractValue   float64             `json:"contractValue" bson:"contractValue"`
	PaymentReceived float64             `json:"paymentReceived" bson:"paymentReceived"`
	PaymentPending  float64             `json:"paymentPending" bson:"paymentPending"`
	Status          string              `json:"status" bson:"status"`
	PaymentTerms    string              `json:"paymentTerms,omitempty" bson:"paymentTerms,omitempty"`
	Priority        string              `json:"priority,omitempty" bson:"priority,omitempty"`
	Notes           string              `json:"notes,omitempty" bson:"notes,omitempty"`
	AssignedTo      *primitive.ObjectID `json:"-" bson:"assignedTo,omitempty"`
	AssignedToRef   *UserRef            `json:"assignedTo" bson:"-"`
	Audit           `bson:",inline"`
}

// ClientInput is the create/update body.
type ClientInput struct {
	Name            *string    `json:"name" bson:"name,omitempty" create:"required" validate:"omitempty,min=1"`
	Email           *string    `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
	Phone           *string    `json:"phone" bson:"phone,omitempty" create:"required" validate:"omitempty,min=1"`
	Company         *string    `json:"company" bson:"company,omitempty" create:"required" validate:"omitempty,min=1"`
	Industry        *string    `json:"industry" bson:"industry,omitempty"`
	Address         *string    `json:"address" bson:"address,omitempty"`
	ContractValue   *FlexFloat `json:"contractValue" bson:"contractValue,omitempty" validate:"omitempty,min=0"`
	PaymentReceived *FlexFloat `json:"paymentReceived" bson:"paymentReceived,omitempty" validate:"omitempty,min=0"`
	PaymentPending  *FlexFloat `json:"paymentPending" bson:"paymentPending,omitempty" validate:"omitempty,min=0"`
	Status          *string    `json:"status" bson:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	PaymentTerms    *string    `json:"paymentTerms" bson:"paymentTerms,omitempty"`
	Priority        *string    `json:"priority" bson:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Notes           *string    `json:"notes" bson:"notes,omitempty"`
	AssignedTo      *FlexID    `json:"assignedTo" bson:"assignedTo,omitempty"`
}

// Ref returns the display fields a client reference expands to.
func (c *Client) Ref() *ClientRef {
	return &ClientRef{ID: c.ID, Name: c.Name, Email: c.Email, Company: c.Company}
}

func (c *Client) DocumentID() primitive.ObjectID { return c.ID }

func (c *Client) Prepare(owner primitive.ObjectID, now time.Time) {
	c.stamp(owner, now)
	defaultString(&c.Status, "active")
}

func (c *Client) CollectRefs(refs *RefSet) {
	refs.AddUser(c.AssignedTo)
	refs.AddUser(&c.CreatedBy)
}

func (c *Client) Expand(lookup Lookup) {
	c.AssignedToRef = lookup.User(c.AssignedTo)
	c.CreatedByRef = lookup.User(&c.CreatedBy)
}
