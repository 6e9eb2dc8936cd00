package services

import (
	"context"

	"github.com/google/uuid"

	"socialgraph/internal/models"
)

// UserServiceInterface defines the contract for user directory operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Search(ctx context.Context, params SearchParams) ([]models.UserProfile, int, error)
}

// AuthServiceInterface defines the contract for the identity collaborator.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// FriendServiceInterface defines the contract for friend-request
// lifecycle operations used by handlers.
type FriendServiceInterface interface {
	CreateRequest(ctx context.Context, senderID uuid.UUID, recipientEmail string) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, requesterID, requestID uuid.UUID) error
	RejectRequest(ctx context.Context, requesterID, requestID uuid.UUID) error
	ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
	ListFriends(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.FriendEntry, int, error)
}
