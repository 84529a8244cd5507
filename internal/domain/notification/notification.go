package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

type Kind string

const (
	KindInfo        Kind = "info"
	KindUsage       Kind = "usage"
	KindCredits     Kind = "credits"
	KindDeployment  Kind = "deployment"
	KindContactFail Kind = "contact_failed"
)

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Kind      Kind       `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func New(userID uuid.UUID, kind Kind, title, body string) Notification {
	return Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

func (n Notification) IsRead() bool { return n.ReadAt != nil }

// Unread counts notifications without a read timestamp.
func Unread(ns []Notification) int {
	count := 0
	for _, n := range ns {
		if !n.IsRead() {
			count++
		}
	}
	return count
}

type ListFilters struct {
	UnreadOnly bool
	Limit      int
}
