package models

import (
	"time"

	"github.com/google/uuid"
)

// FriendRequest is a directed, pending proposal to establish mutual
// friendship. An accepted request is deleted in the same transaction that
// flips the flag, so accepted=true is never observable after the call.
type FriendRequest struct {
	ID        uuid.UUID `json:"id"`
	FromID    uuid.UUID `json:"from_id"`
	ToID      uuid.UUID `json:"to_id"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingRequest is the projection of an inbound pending request:
// only the sender's email is exposed.
type PendingRequest struct {
	FromUserEmail string `json:"from_user_email"`
}

// Friend is one directed edge of a symmetric friendship, owned by UserID.
// Acceptance creates both directions.
type Friend struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FriendID  uuid.UUID `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendEntry is a friend-list row joined with the other party's identity.
type FriendEntry struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}
