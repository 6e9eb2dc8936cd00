package handlers

import (
	"context"

	"github.com/google/uuid"

	"socialgraph/internal/models"
	"socialgraph/internal/services"
)

type mockUserService struct {
	CreateFunc     func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	SearchFunc     func(ctx context.Context, params services.SearchParams) ([]models.UserProfile, int, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserService) Search(ctx context.Context, params services.SearchParams) ([]models.UserProfile, int, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, params)
	}
	return []models.UserProfile{}, 0, nil
}

type mockAuthService struct {
	HashPasswordFunc    func(password string) (string, error)
	VerifyPasswordFunc  func(hash, password string) bool
	CreateSessionFunc   func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc   func(ctx context.Context, token string) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed-" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return hash == "hashed-"+password
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "sessiontoken", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, services.ErrSessionNotFound
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

type mockFriendService struct {
	CreateRequestFunc       func(ctx context.Context, senderID uuid.UUID, recipientEmail string) (*models.FriendRequest, error)
	AcceptRequestFunc       func(ctx context.Context, requesterID, requestID uuid.UUID) error
	RejectRequestFunc       func(ctx context.Context, requesterID, requestID uuid.UUID) error
	ListPendingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
	ListFriendsFunc         func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.FriendEntry, int, error)
}

func (m *mockFriendService) CreateRequest(ctx context.Context, senderID uuid.UUID, recipientEmail string) (*models.FriendRequest, error) {
	if m.CreateRequestFunc != nil {
		return m.CreateRequestFunc(ctx, senderID, recipientEmail)
	}
	return &models.FriendRequest{}, nil
}

func (m *mockFriendService) AcceptRequest(ctx context.Context, requesterID, requestID uuid.UUID) error {
	if m.AcceptRequestFunc != nil {
		return m.AcceptRequestFunc(ctx, requesterID, requestID)
	}
	return nil
}

func (m *mockFriendService) RejectRequest(ctx context.Context, requesterID, requestID uuid.UUID) error {
	if m.RejectRequestFunc != nil {
		return m.RejectRequestFunc(ctx, requesterID, requestID)
	}
	return nil
}

func (m *mockFriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	if m.ListPendingRequestsFunc != nil {
		return m.ListPendingRequestsFunc(ctx, userID)
	}
	return []models.PendingRequest{}, nil
}

func (m *mockFriendService) ListFriends(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.FriendEntry, int, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, userID, limit, offset)
	}
	return []models.FriendEntry{}, 0, nil
}

// mockReporter records captured errors so tests can assert 500 paths report.
type mockReporter struct {
	captured []error
}

func (m *mockReporter) CaptureException(ctx context.Context, err error, fields map[string]interface{}) {
	m.captured = append(m.captured, err)
}
