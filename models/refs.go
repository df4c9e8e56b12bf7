package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ClientRef is an expanded client reference.
type ClientRef struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Name    string             `json:"name" bson:"name"`
	Email   string             `json:"email,omitempty" bson:"email"`
	Company string             `json:"company" bson:"company"`
}

// RefSet collects the ids a batch of documents points at.
type RefSet struct {
	Users   []primitive.ObjectID
	Clients []primitive.ObjectID
}

// AddUser records a user reference, ignoring nil ids.
func (r *RefSet) AddUser(id *primitive.ObjectID) {
	if id != nil && !id.IsZero() {
		r.Users = append(r.Users, *id)
	}
}

// AddClient records a client reference, ignoring nil ids.
func (r *RefSet) AddClient(id *primitive.ObjectID) {
	if id != nil && !id.IsZero() {
		r.Clients = append(r.Clients, *id)
	}
}

// Lookup holds resolved references keyed by id.
type Lookup struct {
	Users   map[primitive.ObjectID]*UserRef
	Clients map[primitive.ObjectID]*ClientRef
}

// User resolves a user reference; unknown ids expand to nil.
func (l Lookup) User(id *primitive.ObjectID) *UserRef {
	if id == nil {
		return nil
	}
	return l.Users[*id]
}

// Client resolves a client reference; unknown ids expand to nil.
func (l Lookup) Client(id *primitive.ObjectID) *ClientRef {
	if id == nil {
		return nil
	}
	return l.Clients[*id]
}

// Expandable documents reference users or clients that are expanded to display
// fields before they are returned.
type Expandable interface {
	CollectRefs(refs *RefSet)
	Expand(lookup Lookup)
}
