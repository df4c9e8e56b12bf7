package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sirswa/crm_backend/models"
	"github.com/sirswa/crm_backend/repositories"
)

// MessageService handles direct messages between users.
type MessageService struct {
	messages  *repositories.Repository[models.Message]
	users     *repositories.UserRepository
	populator *Populator
	validator *InputValidator
	now       func() time.Time
}

func NewMessageService(messages *repositories.Repository[models.Message], users *repositories.UserRepository, populator *Populator, validator *InputValidator) *MessageService {
	return &MessageService{
		messages:  messages,
		users:     users,
		populator: populator,
		validator: validator,
		now:       time.Now,
	}
}

// Send stores a message from the principal.
func (s *MessageService) Send(ctx context.Context, p *models.Principal, req models.SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, &models.ErrValidation{Field: "message", Message: "is required"}
	}
	receiver, err := primitive.ObjectIDFromHex(req.Receiver)
	if err != nil {
		return nil, &models.ErrValidation{Field: "receiver", Message: "is invalid"}
	}
	if _, err := s.users.FindByID(ctx, receiver); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &models.ErrValidation{Field: "receiver", Message: "does not exist"}
		}
		return nil, fmt.Errorf("find receiver: %w", err)
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = models.ConversationID(p.ID, receiver)
	}
	now := s.now()
	msg := &models.Message{
		Sender:         p.ID,
		Receiver:       receiver,
		Body:           req.Message,
		ConversationID: conversationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	id, err := s.messages.Insert(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	msg.ID = id
	if err := s.populator.Expand(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Conversations summarizes every conversation the principal takes part in,
// most recently active first.
func (s *MessageService) Conversations(ctx context.Context, p *models.Principal) ([]*models.Conversation, error) {
	msgs, err := s.messages.List(ctx, involving(p.ID), repositories.SortNewestFirst)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	convs, participants := SummarizeConversations(p.ID, msgs)

	var ids []primitive.ObjectID
	for _, c := range convs {
		ids = append(ids, participants[c.ID]...)
	}
	refs, err := s.populator.UserRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.UserRef, len(refs))
	for _, r := range refs {
		byID[r.ID] = r
	}
	for _, c := range convs {
		c.Participants = make([]*models.UserRef, 0, len(participants[c.ID]))
		for _, id := range participants[c.ID] {
			if ref, ok := byID[id]; ok {
				c.Participants = append(c.Participants, ref)
			}
		}
	}
	return convs, nil
}

// SummarizeConversations groups messages (newest first) by conversation. It
// returns the summaries ordered by last activity and, per conversation, the
// ids of the other participants.
func SummarizeConversations(me primitive.ObjectID, msgs []*models.Message) ([]*models.Conversation, map[string][]primitive.ObjectID) {
	byID := make(map[string]*models.Conversation)
	participants := make(map[string][]primitive.ObjectID)
	var order []*models.Conversation

	for _, m := range msgs {
		c, ok := byID[m.ConversationID]
		if !ok {
			c = &models.Conversation{
				ID:              m.ConversationID,
				LastMessage:     m.Body,
				LastMessageTime: m.CreatedAt,
			}
			byID[m.ConversationID] = c
			order = append(order, c)
		}
		other := m.Counterpart(me)
		if !containsID(participants[c.ID], other) {
			participants[c.ID] = append(participants[c.ID], other)
		}
		if m.Receiver == me && !m.Read {
			c.UnreadCount++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].LastMessageTime.After(order[j].LastMessageTime)
	})
	return order, participants
}

// Conversation returns the principal's messages in a conversation, oldest
// first, and marks those addressed to the principal as read.
func (s *MessageService) Conversation(ctx context.Context, p *models.Principal, conversationID string) ([]*models.Message, error) {
	filter := involving(p.ID)
	filter["conversationId"] = conversationID
	msgs, err := s.messages.List(ctx, filter, repositories.SortOldestFirst)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}

	expandable := make([]models.Expandable, len(msgs))
	for i, m := range msgs {
		expandable[i] = m
	}
	if err := s.populator.Expand(ctx, expandable...); err != nil {
		return nil, err
	}

	if _, err := s.messages.UpdateMany(ctx,
		bson.M{"conversationId": conversationID, "receiver": p.ID},
		bson.M{"read": true, "updatedAt": s.now()},
	); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return msgs, nil
}

func involving(id primitive.ObjectID) bson.M {
	return bson.M{"$or": []bson.M{{"sender": id}, {"receiver": id}}}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
