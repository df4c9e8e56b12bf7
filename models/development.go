package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentPending   = "pending"
	PaymentPartial   = "partial"
	PaymentCompleted = "completed"
)

// BankDetails holds the developer's payout account.
type BankDetails struct {
	AccountNumber string `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	BankName      string `json:"bankName,omitempty" bson:"bankName,omitempty"`
	IFSCCode      string `json:"ifscCode,omitempty" bson:"ifscCode,omitempty"`
}

// Development is a developer engagement billed against a project.
// PendingAmount and PaymentStatus are derived from TotalAmount and PaidAmount.
type Development struct {
	ID              primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	DeveloperName   string              `json:"developerName" bson:"developerName"`
	Email           string              `json:"email,omitempty" bson:"email,omitempty"`
	Phone           string              `json:"phone,omitempty" bson:"phone,omitempty"`
	ProjectName     string              `json:"projectName" bson:"projectName"`
	Client          *primitive.ObjectID `json:"-" bson:"client,omitempty"`
	ClientRef       *ClientRef          `json:"client" bson:"-"`
	TotalAmount     float64             `json:"totalAmount" bson:"totalAmount"`
	PaidAmount      float64             `json:"paidAmount" bson:"paidAmount"`
	PendingAmount   float64             `json:"pendingAmount" bson:"pendingAmount"`
	PaymentStatus   string              `json:"paymentStatus" bson:"paymentStatus"`
	HourlyRate      float64             `json:"hourlyRate" bson:"hourlyRate"`
	HoursWorked     float64             `json:"hoursWorked" bson:"hoursWorked"`
	StartDate       *time.Time          `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate         *time.Time          `json:"endDate,omitempty" bson:"endDate,omitempty"`
	PaymentMethod   string              `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	LastPaymentDate *time.Time          `json:"lastPaymentDate,omitempty" bson:"lastPaymentDate,omitempty"`
	NextPaymentDue  *time.Time          `json:"nextPaymentDue,omitempty" bson:"nextPaymentDue,omitempty"`
	Notes           string              `json:"notes,omitempty" bson:"notes,omitempty"`
	BankDetails     *BankDetails        `json:"bankDetails,omitempty" bson:"bankDetails,omitempty"`
	AssignedTo      *primitive.ObjectID `json:"-" bson:"assignedTo,omitempty"`
	AssignedToRef   *UserRef            `json:"assignedTo" bson:"-"`
	Audit           `bson:",inline"`
}

// DevelopmentInput is the create/update body. It has no pendingAmount or
// paymentStatus: those are always derived.
type DevelopmentInput struct {
	DeveloperName   *string      `json:"developerName" bson:"developerName,omitempty" create:"required" validate:"omitempty,min=1"`
	Email           *string      `json:"email" bson:"email,omitempty" validate:"omitempty,email"`
	Phone           *string      `json:"phone" bson:"phone,omitempty"`
	ProjectName     *string      `json:"projectName" bson:"projectName,omitempty" create:"required" validate:"omitempty,min=1"`
	Client          *FlexID      `json:"client" bson:"client,omitempty"`
	TotalAmount     *FlexFloat   `json:"totalAmount" bson:"totalAmount,omitempty" validate:"omitempty,min=0"`
	PaidAmount      *FlexFloat   `json:"paidAmount" bson:"paidAmount,omitempty" validate:"omitempty,min=0"`
	HourlyRate      *FlexFloat   `json:"hourlyRate" bson:"hourlyRate,omitempty" validate:"omitempty,min=0"`
	HoursWorked     *FlexFloat   `json:"hoursWorked" bson:"hoursWorked,omitempty" validate:"omitempty,min=0"`
	StartDate       *FlexTime    `json:"startDate" bson:"startDate,omitempty"`
	EndDate         *FlexTime    `json:"endDate" bson:"endDate,omitempty"`
	PaymentMethod   *string      `json:"paymentMethod" bson:"paymentMethod,omitempty" validate:"omitempty,oneof=bank-transfer paypal cash check"`
	LastPaymentDate *FlexTime    `json:"lastPaymentDate" bson:"lastPaymentDate,omitempty"`
	NextPaymentDue  *FlexTime    `json:"nextPaymentDue" bson:"nextPaymentDue,omitempty"`
	Notes           *string      `json:"notes" bson:"notes,omitempty"`
	BankDetails     *BankDetails `json:"bankDetails" bson:"bankDetails,omitempty"`
	AssignedTo      *FlexID      `json:"assignedTo" bson:"assignedTo,omitempty"`
}

// DeriveBilling returns the outstanding amount and payment status for a
// development engagement.
func DeriveBilling(total, paid float64) (pending float64, status string) {
	pending = total - paid
	switch {
	case paid == 0:
		status = PaymentPending
	case paid < total:
		status = PaymentPartial
	default:
		status = PaymentCompleted
	}
	return pending, status
}

func (d *Development) DocumentID() primitive.ObjectID { return d.ID }

func (d *Development) Prepare(owner primitive.ObjectID, now time.Time) {
	d.stamp(owner, now)
	d.PendingAmount, d.PaymentStatus = DeriveBilling(d.TotalAmount, d.PaidAmount)
}

func (d *Development) CollectRefs(refs *RefSet) {
	refs.AddClient(d.Client)
	refs.AddUser(d.AssignedTo)
	refs.AddUser(&d.CreatedBy)
}

func (d *Development) Expand(lookup Lookup) {
	d.ClientRef = lookup.Client(d.Client)
	d.AssignedToRef = lookup.User(d.AssignedTo)
	d.CreatedByRef = lookup.User(&d.CreatedBy)
}
