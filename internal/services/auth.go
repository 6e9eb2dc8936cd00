package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"socialgraph/internal/models"
)

const (
	bcryptCost       = 12
	sessionDuration  = 30 * 24 * time.Hour
	sessionKeyPrefix = "session:"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// AuthService is the authenticated-identity collaborator: it issues and
// validates redis-backed session tokens for the handlers.
type AuthService struct {
	db       DBConn
	sessions KVStore
}

func NewAuthService(db DBConn, sessions KVStore) *AuthService {
	return &AuthService{db: db, sessions: sessions}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSessionToken returns a random token and its storage hash. Only
// the hash is persisted, so a leaked session store cannot be replayed.
func (s *AuthService) GenerateSessionToken() (token string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	token = hex.EncodeToString(bytes)
	return token, hashToken(token), nil
}

func (s *AuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, tokenHash, err := s.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	if err := s.sessions.Set(ctx, sessionKeyPrefix+tokenHash, userID.String(), sessionDuration); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	return token, nil
}

func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	value, found, err := s.sessions.Get(ctx, sessionKeyPrefix+hashToken(token))
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("parsing session user id: %w", err)
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		`SELECT id, email, username, password_hash, created_at, updated_at
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("loading session user: %w", err)
	}

	return user, nil
}

func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	if err := s.sessions.Del(ctx, sessionKeyPrefix+hashToken(token)); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
