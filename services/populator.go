package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
)

// Populator expands user and client references on a batch of documents with
// one query per referenced collection.
type Populator struct {
	users      *repositories.UserRepository
	clients    *repositories.Repository[models.Client]
	breakGlass *models.UserRef
}

func NewPopulator(users *repositories.UserRepository, clients *repositories.Repository[models.Client], breakGlass *models.UserRef) *Populator {
	return &Populator{users: users, clients: clients, breakGlass: breakGlass}
}

// Expand resolves references in place. References to deleted records expand to nil.
func (p *Populator) Expand(ctx context.Context, docs ...models.Expandable) error {
	if len(docs) == 0 {
		return nil
	}
	var refs models.RefSet
	for _, d := range docs {
		d.CollectRefs(&refs)
	}

	lookup := models.Lookup{
		Users:   make(map[primitive.ObjectID]*models.UserRef),
		Clients: make(map[primitive.ObjectID]*models.ClientRef),
	}
	if err := p.loadUsers(ctx, refs.Users, lookup.Users); err != nil {
		return err
	}
	if len(refs.Clients) > 0 {
		clients, err := p.clients.FindByIDs(ctx, unique(refs.Clients))
		if err != nil {
			return fmt.Errorf("expand clients: %w", err)
		}
		for _, c := range clients {
			lookup.Clients[c.ID] = c.Ref()
		}
	}

	for _, d := range docs {
		d.Expand(lookup)
	}
	return nil
}

// UserRefs resolves a list of user ids, keeping the order of ids and dropping
// unknown ones.
func (p *Populator) UserRefs(ctx context.Context, ids []primitive.ObjectID) ([]*models.UserRef, error) {
	found := make(map[primitive.ObjectID]*models.UserRef)
	if err := p.loadUsers(ctx, ids, found); err != nil {
		return nil, err
	}
	out := make([]*models.UserRef, 0, len(ids))
	for _, id := range ids {
		if ref, ok := found[id]; ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (p *Populator) loadUsers(ctx context.Context, ids []primitive.ObjectID, into map[primitive.ObjectID]*models.UserRef) error {
	ids = unique(ids)
	query := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id == models.BreakGlassID {
			if p.breakGlass != nil {
				into[id] = p.breakGlass
			}
			continue
		}
		query = append(query, id)
	}
	if len(query) == 0 {
		return nil
	}
	users, err := p.users.FindByIDs(ctx, query)
	if err != nil {
		return fmt.Errorf("expand users: %w", err)
	}
	for _, u := range users {
		into[u.ID] = u.Ref()
	}
	return nil
}

func unique(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
