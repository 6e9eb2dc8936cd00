package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"socialgraph/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrUsernameAlreadyInUse = errors.New("username already in use")
)

type UserService struct {
	db DBConn
}

func NewUserService(db DBConn) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))
	username := strings.TrimSpace(params.Username)

	var emailTaken bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&emailTaken)
	if err != nil {
		return nil, fmt.Errorf("checking email existence: %w", err)
	}
	if emailTaken {
		return nil, ErrEmailAlreadyExists
	}

	var usernameTaken bool
	err = s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&usernameTaken)
	if err != nil {
		return nil, fmt.Errorf("checking username existence: %w", err)
	}
	if usernameTaken {
		return nil, ErrUsernameAlreadyInUse
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, username, password_hash, created_at, updated_at`,
		email, username, params.PasswordHash,
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, username, password_hash, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, username, password_hash, created_at, updated_at
		 FROM users WHERE email = $1`,
		strings.TrimSpace(strings.ToLower(email)),
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return user, nil
}

// SearchParams filters the user directory. Query matches username or email
// case-insensitively; Email and Username are exact-field filters.
type SearchParams struct {
	Query    string
	Email    string
	Username string
	Limit    int
	Offset   int
}

// Search returns one page of matching users plus the total match count.
func (s *UserService) Search(ctx context.Context, params SearchParams) ([]models.UserProfile, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if q := strings.TrimSpace(params.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(LOWER(username) LIKE $%d OR LOWER(email) LIKE $%d)", n, n))
	}
	if params.Email != "" {
		args = append(args, strings.ToLower(params.Email))
		where = append(where, fmt.Sprintf("email = $%d", len(args)))
	}
	if params.Username != "" {
		args = append(args, params.Username)
		where = append(where, fmt.Sprintf("username = $%d", len(args)))
	}

	clause := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM users WHERE "+clause,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	rows, err := s.db.Query(ctx,
		fmt.Sprintf(
			`SELECT id, email, username FROM users
			 WHERE %s
			 ORDER BY id
			 LIMIT $%d OFFSET $%d`,
			clause, len(args)-1, len(args),
		),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	var results []models.UserProfile
	for rows.Next() {
		var u models.UserProfile
		if err := rows.Scan(&u.ID, &u.Email, &u.Username); err != nil {
			return nil, 0, fmt.Errorf("scanning user: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("searching users: %w", err)
	}

	if results == nil {
		results = []models.UserProfile{}
	}

	return results, total, nil
}
