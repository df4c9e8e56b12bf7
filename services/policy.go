package services

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
)

// AccessPolicy decides what a principal sees and may change in one collection.
// Nil hooks fall back to: everything visible, records addressed by id, no
// extra edit or delete rule.
type AccessPolicy[T any] struct {
	// ListFilter narrows List.
	ListFilter func(p *models.Principal) bson.M
	// Scope addresses one record for get, update and delete. Records outside
	// the scope are reported as not found.
	Scope func(p *models.Principal, id primitive.ObjectID) bson.M
	// CheckUpdate may reject an update or rewrite its $set document.
	CheckUpdate func(p *models.Principal, current *T, set bson.M) error
	// CheckDelete may reject a delete.
	CheckDelete func(p *models.Principal, current *T) error
}

func (a AccessPolicy[T]) listFilter(p *models.Principal) bson.M {
	if a.ListFilter == nil {
		return bson.M{}
	}
	return a.ListFilter(p)
}

func (a AccessPolicy[T]) scope(p *models.Principal, id primitive.ObjectID) bson.M {
	if a.Scope == nil {
		return bson.M{"_id": id}
	}
	return a.Scope(p, id)
}

// OpenPolicy lets every authenticated principal read and change every record.
func OpenPolicy[T any]() AccessPolicy[T] {
	return AccessPolicy[T]{}
}

// DevelopmentPolicy is open, and recomputes the derived billing fields from
// the stored amounts merged with the update.
func DevelopmentPolicy() AccessPolicy[models.Development] {
	return AccessPolicy[models.Development]{
		CheckUpdate: func(_ *models.Principal, current *models.Development, set bson.M) error {
			total, paid := current.TotalAmount, current.PaidAmount
			if v, ok := set["totalAmount"].(float64); ok {
				total = v
			}
			if v, ok := set["paidAmount"].(float64); ok {
				paid = v
			}
			set["pendingAmount"], set["paymentStatus"] = models.DeriveBilling(total, paid)
			return nil
		},
	}
}

// EventPolicy confines events to their creator.
func EventPolicy() AccessPolicy[models.Event] {
	return AccessPolicy[models.Event]{
		ListFilter: func(p *models.Principal) bson.M {
			return bson.M{"createdBy": p.ID}
		},
		Scope: func(p *models.Principal, id primitive.ObjectID) bson.M {
			return bson.M{"_id": id, "createdBy": p.ID}
		},
	}
}

var errExpenseLocked = &models.ErrForbidden{Message: "Cannot edit approved/rejected expenses"}

// ExpensePolicy shows admins every expense and others their own. Creators may
// edit their expense while it is pending; only admins decide its status, and
// the deciding admin is recorded as approver.
func ExpensePolicy() AccessPolicy[models.Expense] {
	return AccessPolicy[models.Expense]{
		ListFilter: func(p *models.Principal) bson.M {
			if p.IsAdmin() {
				return bson.M{}
			}
			return bson.M{"createdBy": p.ID}
		},
		CheckUpdate: func(p *models.Principal, current *models.Expense, set bson.M) error {
			if current.CreatedBy != p.ID && !p.IsAdmin() {
				return &models.ErrForbidden{}
			}
			if !p.IsAdmin() && !current.IsPending() {
				return errExpenseLocked
			}
			if _, ok := set["status"]; ok {
				if p.IsAdmin() {
					set["approvedBy"] = p.ID
				} else {
					delete(set, "status")
				}
			}
			return nil
		},
		CheckDelete: func(p *models.Principal, current *models.Expense) error {
			if current.CreatedBy != p.ID && !p.IsAdmin() {
				return &models.ErrForbidden{}
			}
			return nil
		},
	}
}
