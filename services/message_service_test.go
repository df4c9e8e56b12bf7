package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
)

func TestSummarizeConversations(t *testing.T) {
	me, ann, ben := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	withAnn := models.ConversationID(me, ann)
	withBen := models.ConversationID(me, ben)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	msg := func(from, to primitive.ObjectID, conv, body string, minute int, read bool) *models.Message {
		return &models.Message{Sender: from, Receiver: to, ConversationID: conv, Body: body, Read: read, CreatedAt: base.Add(time.Duration(minute) * time.Minute)}
	}
	// newest first, as listed from the store
	msgs := []*models.Message{
		msg(ben, me, withBen, "ben latest", 30, false),
		msg(me, ann, withAnn, "reply to ann", 20, false),
		msg(ann, me, withAnn, "ann second", 10, false),
		msg(ann, me, withAnn, "ann first", 5, true),
		msg(ben, me, withBen, "ben first", 1, false),
	}

	convs, participants := SummarizeConversations(me, msgs)
	require.Len(t, convs, 2)

	assert.Equal(t, withBen, convs[0].ID)
	assert.Equal(t, "ben latest", convs[0].LastMessage)
	assert.Equal(t, 2, convs[0].UnreadCount)
	assert.Equal(t, []primitive.ObjectID{ben}, participants[withBen])

	assert.Equal(t, withAnn, convs[1].ID)
	assert.Equal(t, "reply to ann", convs[1].LastMessage)
	assert.Equal(t, 1, convs[1].UnreadCount)
	assert.Equal(t, []primitive.ObjectID{ann}, participants[withAnn])
}

func TestMessageService_Flow(t *testing.T) {
	store := repositories.NewMemoryStore()
	users := repositories.NewUserRepository(store)
	clients := repositories.NewRepository[models.Client](store, repositories.ClientsCollection)
	messages := repositories.NewRepository[models.Message](store, repositories.MessagesCollection)
	svc := NewMessageService(messages, users, NewPopulator(users, clients, nil), NewInputValidator())
	ctx := context.Background()

	alice := insertUser(t, users, "alice@example.com", "secret1", models.RoleStaff, true)
	bob := insertUser(t, users, "bob@example.com", "secret1", models.RoleStaff, true)
	ap, bp := models.PrincipalFromUser(alice), models.PrincipalFromUser(bob)

	sent, err := svc.Send(ctx, ap, models.SendMessageRequest{Receiver: bob.ID.Hex(), Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, models.ConversationID(alice.ID, bob.ID), sent.ConversationID)
	require.NotNil(t, sent.SenderRef)
	assert.Equal(t, "alice@example.com", sent.SenderRef.Email)
	assert.False(t, sent.Read)

	convs, err := svc.Conversations(ctx, bp)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 1, convs[0].UnreadCount)
	require.Len(t, convs[0].Participants, 1)
	assert.Equal(t, alice.ID, convs[0].Participants[0].ID)

	thread, err := svc.Conversation(ctx, bp, sent.ConversationID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "hello", thread[0].Body)

	convs, err = svc.Conversations(ctx, bp)
	require.NoError(t, err)
	assert.Equal(t, 0, convs[0].UnreadCount)

	// the sender reading the thread does not change the receiver's state
	convs, err = svc.Conversations(ctx, ap)
	require.NoError(t, err)
	assert.Equal(t, 0, convs[0].UnreadCount)

	outsider := &models.Principal{ID: primitive.NewObjectID(), Role: models.RoleStaff}
	thread, err = svc.Conversation(ctx, outsider, sent.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, thread)
}

func TestMessageService_SendValidation(t *testing.T) {
	store := repositories.NewMemoryStore()
	users := repositories.NewUserRepository(store)
	clients := repositories.NewRepository[models.Client](store, repositories.ClientsCollection)
	messages := repositories.NewRepository[models.Message](store, repositories.MessagesCollection)
	svc := NewMessageService(messages, users, NewPopulator(users, clients, nil), NewInputValidator())
	p := &models.Principal{ID: primitive.NewObjectID(), Role: models.RoleStaff}

	tests := map[string]models.SendMessageRequest{
		"empty message":    {Receiver: primitive.NewObjectID().Hex(), Message: "   "},
		"missing receiver": {Message: "hi"},
		"bad receiver":     {Receiver: "xyz", Message: "hi"},
		"unknown receiver": {Receiver: primitive.NewObjectID().Hex(), Message: "hi"},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), p, req)
			var verr *models.ErrValidation
			assert.True(t, errors.As(err, &verr), "expected ErrValidation, got %v", err)
		})
	}
}
