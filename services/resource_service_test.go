package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
)

type resourceFixture struct {
	store     *repositories.MemoryStore
	populator *Populator
	validator *InputValidator
}

func newResourceFixture() *resourceFixture {
	store := repositories.NewMemoryStore()
	users := repositories.NewUserRepository(store)
	clients := repositories.NewRepository[models.Client](store, repositories.ClientsCollection)
	return &resourceFixture{
		store:     store,
		populator: NewPopulator(users, clients, nil),
		validator: NewInputValidator(),
	}
}

func (f *resourceFixture) expenses() *ResourceService[models.Expense, *models.Expense, models.ExpenseInput] {
	repo := repositories.NewRepository[models.Expense](f.store, repositories.ExpensesCollection)
	return NewResourceService[models.Expense, *models.Expense, models.ExpenseInput]("Expense", repo, ExpensePolicy(), f.populator, f.validator)
}

func (f *resourceFixture) developments() *ResourceService[models.Development, *models.Development, models.DevelopmentInput] {
	repo := repositories.NewRepository[models.Development](f.store, repositories.DevelopmentsCollection)
	return NewResourceService[models.Development, *models.Development, models.DevelopmentInput]("Development", repo, DevelopmentPolicy(), f.populator, f.validator)
}

func (f *resourceFixture) events() *ResourceService[models.Event, *models.Event, models.EventInput] {
	repo := repositories.NewRepository[models.Event](f.store, repositories.EventsCollection)
	return NewResourceService[models.Event, *models.Event, models.EventInput]("Event", repo, EventPolicy(), f.populator, f.validator)
}

func (f *resourceFixture) leads() *ResourceService[models.Lead, *models.Lead, models.LeadInput] {
	repo := repositories.NewRepository[models.Lead](f.store, repositories.LeadsCollection)
	return NewResourceService[models.Lead, *models.Lead, models.LeadInput]("Lead", repo, OpenPolicy[models.Lead](), f.populator, f.validator)
}

func input[I any](t *testing.T, body string) *I {
	t.Helper()
	in := new(I)
	require.NoError(t, json.Unmarshal([]byte(body), in))
	return in
}

func staff() *models.Principal {
	return &models.Principal{ID: primitive.NewObjectID(), Role: models.RoleStaff, IsActive: true}
}

func admin() *models.Principal {
	return &models.Principal{ID: primitive.NewObjectID(), Role: models.RoleAdmin, IsActive: true}
}

func TestExpenses_CreateIsAlwaysPending(t *testing.T) {
	svc := newResourceFixture().expenses()
	ctx := context.Background()

	e, err := svc.Create(ctx, staff(), input[models.ExpenseInput](t,
		`{"title":"Taxi","amount":"42.5","category":"travel","date":"2024-03-01","status":"approved"}`))
	require.NoError(t, err)
	assert.Equal(t, models.ExpensePending, e.Status)
	assert.Equal(t, 42.5, e.Amount)
	assert.Nil(t, e.ApprovedBy)
}

func TestExpenses_CreateValidation(t *testing.T) {
	svc := newResourceFixture().expenses()
	ctx := context.Background()

	tests := map[string]string{
		"missing title":  `{"amount":1,"category":"travel","date":"2024-03-01"}`,
		"empty date":     `{"title":"Taxi","amount":1,"category":"travel","date":""}`,
		"bad category":   `{"title":"Taxi","amount":1,"category":"yachts","date":"2024-03-01"}`,
		"negative value": `{"title":"Taxi","amount":-1,"category":"travel","date":"2024-03-01"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, staff(), input[models.ExpenseInput](t, body))
			var verr *models.ErrValidation
			assert.True(t, errors.As(err, &verr), "expected ErrValidation, got %v", err)
		})
	}
}

func TestExpenses_EditRules(t *testing.T) {
	svc := newResourceFixture().expenses()
	ctx := context.Background()
	owner, other, boss := staff(), staff(), admin()

	e, err := svc.Create(ctx, owner, input[models.ExpenseInput](t,
		`{"title":"Laptop","amount":900,"category":"office","date":"2024-03-01"}`))
	require.NoError(t, err)
	id := e.ID.Hex()

	// owner edits while pending, but cannot set the status
	e, err = svc.Update(ctx, owner, id, input[models.ExpenseInput](t, `{"amount":950,"status":"approved"}`))
	require.NoError(t, err)
	assert.Equal(t, 950.0, e.Amount)
	assert.Equal(t, models.ExpensePending, e.Status)

	_, err = svc.Update(ctx, other, id, input[models.ExpenseInput](t, `{"amount":1}`))
	var forbidden *models.ErrForbidden
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, "Access denied", forbidden.Error())

	e, err = svc.Update(ctx, boss, id, input[models.ExpenseInput](t, `{"status":"approved"}`))
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseApproved, e.Status)
	require.NotNil(t, e.ApprovedBy)
	assert.Equal(t, boss.ID, *e.ApprovedBy)

	_, err = svc.Update(ctx, owner, id, input[models.ExpenseInput](t, `{"amount":1}`))
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, "Cannot edit approved/rejected expenses", forbidden.Message)

	require.Error(t, svc.Delete(ctx, other, id))
	require.NoError(t, svc.Delete(ctx, owner, id))
}

func TestExpenses_ListVisibility(t *testing.T) {
	svc := newResourceFixture().expenses()
	ctx := context.Background()
	alice, bob := staff(), staff()

	for _, p := range []*models.Principal{alice, alice, bob} {
		_, err := svc.Create(ctx, p, input[models.ExpenseInput](t,
			`{"title":"Lunch","amount":10,"category":"other","date":"2024-03-01"}`))
		require.NoError(t, err)
	}

	mine, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.List(ctx, admin())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDevelopments_DerivedBilling(t *testing.T) {
	svc := newResourceFixture().developments()
	ctx := context.Background()
	p := staff()

	d, err := svc.Create(ctx, p, input[models.DevelopmentInput](t,
		`{"developerName":"Dana","projectName":"Portal","totalAmount":"1000","paidAmount":"400","client":""}`))
	require.NoError(t, err)
	assert.Equal(t, 600.0, d.PendingAmount)
	assert.Equal(t, models.PaymentPartial, d.PaymentStatus)
	assert.Nil(t, d.Client)

	d, err = svc.Update(ctx, p, d.ID.Hex(), input[models.DevelopmentInput](t, `{"paidAmount":1000}`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.PendingAmount)
	assert.Equal(t, models.PaymentCompleted, d.PaymentStatus)
	assert.Equal(t, 1000.0, d.TotalAmount)
}

func TestEvents_ScopedToCreator(t *testing.T) {
	svc := newResourceFixture().events()
	ctx := context.Background()
	alice, bob := staff(), staff()

	ev, err := svc.Create(ctx, alice, input[models.EventInput](t,
		`{"title":"Kickoff","date":"2024-03-20","attendees":["", "`+bob.ID.Hex()+`"]}`))
	require.NoError(t, err)
	assert.Equal(t, "meeting", ev.Type)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, ev.Attendees)

	list, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Update(ctx, bob, ev.ID.Hex(), input[models.EventInput](t, `{"title":"Hijack"}`))
	var notFound *models.ErrNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Event not found", notFound.Error())

	err = svc.Delete(ctx, bob, ev.ID.Hex())
	require.True(t, errors.As(err, &notFound))

	ev, err = svc.Update(ctx, alice, ev.ID.Hex(), input[models.EventInput](t, `{"attendees":[]}`))
	require.NoError(t, err)
	assert.Empty(t, ev.Attendees)
	assert.Equal(t, "Kickoff", ev.Title)
}

func TestLeads_UpdatePartialAndClear(t *testing.T) {
	svc := newResourceFixture().leads()
	ctx := context.Background()
	p := staff()

	l, err := svc.Create(ctx, p, input[models.LeadInput](t,
		`{"name":"Acme","phone":"555","tags":["hot"],"estimatedValue":"2500","followUpDate":"2024-04-01"}`))
	require.NoError(t, err)
	assert.Equal(t, "new", l.Status)
	assert.Equal(t, "medium", l.Priority)
	require.NotNil(t, l.FollowUpDate)

	l, err = svc.Update(ctx, p, l.ID.Hex(), input[models.LeadInput](t, `{"status":"qualified","tags":[],"followUpDate":""}`))
	require.NoError(t, err)
	assert.Equal(t, "qualified", l.Status)
	assert.Equal(t, "Acme", l.Name)
	assert.Equal(t, 2500.0, l.EstimatedValue)
	assert.Empty(t, l.Tags)
	assert.Nil(t, l.FollowUpDate)

	_, err = svc.Update(ctx, p, "not-an-id", input[models.LeadInput](t, `{}`))
	var notFound *models.ErrNotFound
	assert.True(t, errors.As(err, &notFound))

	_, err = svc.Create(ctx, p, input[models.LeadInput](t, `{"phone":"555"}`))
	var verr *models.ErrValidation
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)
}
