package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct message between two users.
type Message struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Sender         primitive.ObjectID `json:"-" bson:"sender"`
	SenderRef      *UserRef           `json:"sender" bson:"-"`
	Receiver       primitive.ObjectID `json:"-" bson:"receiver"`
	ReceiverRef    *UserRef           `json:"receiver" bson:"-"`
	Body           string             `json:"message" bson:"message"`
	ConversationID string             `json:"conversationId" bson:"conversationId"`
	Read           bool               `json:"read" bson:"read"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SendMessageRequest is the send body.
type SendMessageRequest struct {
	Receiver       string `json:"receiver" validate:"required"`
	Message        string `json:"message" validate:"required"`
	ConversationID string `json:"conversationId"`
}

// Conversation summarizes one conversation from the requester's side.
type Conversation struct {
	ID              string     `json:"_id"`
	LastMessage     string     `json:"lastMessage"`
	LastMessageTime time.Time  `json:"lastMessageTime"`
	Participants    []*UserRef `json:"participants"`
	UnreadCount     int        `json:"unreadCount"`
}

// ConversationID names the conversation between two users. It does not depend
// on argument order.
func ConversationID(a, b primitive.ObjectID) string {
	ids := []string{a.Hex(), b.Hex()}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// Counterpart returns the other party of the message as seen by user.
func (m *Message) Counterpart(user primitive.ObjectID) primitive.ObjectID {
	if m.Sender == user {
		return m.Receiver
	}
	return m.Sender
}

func (m *Message) CollectRefs(refs *RefSet) {
	refs.AddUser(&m.Sender)
	refs.AddUser(&m.Receiver)
}

func (m *Message) Expand(lookup Lookup) {
	m.SenderRef = lookup.User(&m.Sender)
	m.ReceiverRef = lookup.User(&m.Receiver)
}
