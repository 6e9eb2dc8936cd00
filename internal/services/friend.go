package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"socialgraph/internal/models"
)

// Creation throttle: at most createLimit new requests per sender within
// a rolling createWindow.
const (
	createLimit  = 3
	createWindow = time.Minute
)

var (
	ErrRequestRateLimited = errors.New("too many friend requests in the last minute")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrCannotFriendSelf   = errors.New("cannot send friend request to yourself")
	ErrReciprocalRequest  = errors.New("recipient has already sent you a friend request")
	ErrDuplicateRequest   = errors.New("friend request already sent")
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrNotRecipient       = errors.New("only the recipient can accept or reject")
	ErrAlreadyAccepted    = errors.New("friend request already accepted")
)

// FriendService runs the friend-request lifecycle: creation with its
// guards, recipient-only accept/reject, and friendship materialization.
type FriendService struct {
	db  DBConn
	now func() time.Time
}

func NewFriendService(db DBConn) *FriendService {
	return &FriendService{db: db, now: time.Now}
}

// CreateRequest validates and records a friend request from senderID to
// the user identified by recipientEmail. The checks and the insert share
// one transaction so racing reciprocal creates cannot both survive.
func (s *FriendService) CreateRequest(ctx context.Context, senderID uuid.UUID, recipientEmail string) (*models.FriendRequest, error) {
	recipientEmail = strings.TrimSpace(strings.ToLower(recipientEmail))

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.allowCreate(ctx, tx, senderID); err != nil {
		return nil, err
	}

	var recipientID uuid.UUID
	err = tx.QueryRow(ctx,
		"SELECT id FROM users WHERE email = $1",
		recipientEmail,
	).Scan(&recipientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecipientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving recipient: %w", err)
	}

	if recipientID == senderID {
		return nil, ErrCannotFriendSelf
	}

	var reciprocal bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM friend_requests WHERE from_id = $1 AND to_id = $2)",
		recipientID, senderID,
	).Scan(&reciprocal)
	if err != nil {
		return nil, fmt.Errorf("checking reciprocal request: %w", err)
	}
	if reciprocal {
		return nil, ErrReciprocalRequest
	}

	var duplicate bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM friend_requests WHERE from_id = $1 AND to_id = $2)",
		senderID, recipientID,
	).Scan(&duplicate)
	if err != nil {
		return nil, fmt.Errorf("checking duplicate request: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateRequest
	}

	request := &models.FriendRequest{}
	err = tx.QueryRow(ctx,
		`INSERT INTO friend_requests (from_id, to_id, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, from_id, to_id, accepted, created_at`,
		senderID, recipientID, s.now(),
	).Scan(&request.ID, &request.FromID, &request.ToID, &request.Accepted, &request.CreatedAt)
	if isUniqueViolation(err) {
		// A concurrent create for the same pair won the race. Report it
		// as the rejection the loser would have seen.
		_ = tx.Rollback(ctx)
		return nil, s.classifyPairConflict(ctx, senderID, recipientID)
	}
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing friend request: %w", err)
	}

	return request, nil
}

// allowCreate is the sliding-window rate limiter: a read-only count of the
// sender's recent requests. The count grows naturally as requests are
// created, so there is no separate counter to maintain.
func (s *FriendService) allowCreate(ctx context.Context, q Querier, senderID uuid.UUID) error {
	var recent int
	err := q.QueryRow(ctx,
		"SELECT COUNT(*) FROM friend_requests WHERE from_id = $1 AND created_at >= $2",
		senderID, s.now().Add(-createWindow),
	).Scan(&recent)
	if err != nil {
		return fmt.Errorf("counting recent requests: %w", err)
	}
	if recent >= createLimit {
		return ErrRequestRateLimited
	}
	return nil
}

// AcceptRequest materializes the friendship and removes the request, both
// in one transaction so partial application is never observable.
func (s *FriendService) AcceptRequest(ctx context.Context, requesterID, requestID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	request, err := s.getForUpdate(ctx, tx, requestID)
	if err != nil {
		return err
	}

	if request.ToID != requesterID {
		return ErrNotRecipient
	}
	if request.Accepted {
		return ErrAlreadyAccepted
	}

	_, err = tx.Exec(ctx,
		"UPDATE friend_requests SET accepted = true WHERE id = $1",
		requestID,
	)
	if err != nil {
		return fmt.Errorf("accepting friend request: %w", err)
	}

	if err := s.materialize(ctx, tx, request.FromID, request.ToID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		"DELETE FROM friend_requests WHERE id = $1",
		requestID,
	)
	if err != nil {
		return fmt.Errorf("deleting accepted request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing acceptance: %w", err)
	}
	return nil
}

// RejectRequest deletes the request without creating any friendship.
func (s *FriendService) RejectRequest(ctx context.Context, requesterID, requestID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	request, err := s.getForUpdate(ctx, tx, requestID)
	if err != nil {
		return err
	}

	if request.ToID != requesterID {
		return ErrNotRecipient
	}
	if request.Accepted {
		return ErrAlreadyAccepted
	}

	_, err = tx.Exec(ctx,
		"DELETE FROM friend_requests WHERE id = $1",
		requestID,
	)
	if err != nil {
		return fmt.Errorf("rejecting friend request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing rejection: %w", err)
	}
	return nil
}

// ListPendingRequests returns the user's inbound pending requests,
// projected to the sender's email.
func (s *FriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.email
		 FROM friend_requests r
		 JOIN users u ON r.from_id = u.id
		 WHERE r.to_id = $1 AND r.accepted = false`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	defer rows.Close()

	var requests []models.PendingRequest
	for rows.Next() {
		var r models.PendingRequest
		if err := rows.Scan(&r.FromUserEmail); err != nil {
			return nil, fmt.Errorf("scanning pending request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}

	if requests == nil {
		requests = []models.PendingRequest{}
	}

	return requests, nil
}

// ListFriends returns one page of the user's friend list with the total
// edge count for pagination.
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.FriendEntry, int, error) {
	var total int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM friends WHERE user_id = $1",
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting friends: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT f.id, u.username, u.email
		 FROM friends f
		 JOIN users u ON f.friend_id = u.id
		 WHERE f.user_id = $1
		 ORDER BY u.username
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	var friends []models.FriendEntry
	for rows.Next() {
		var f models.FriendEntry
		if err := rows.Scan(&f.ID, &f.Username, &f.Email); err != nil {
			return nil, 0, fmt.Errorf("scanning friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing friends: %w", err)
	}

	if friends == nil {
		friends = []models.FriendEntry{}
	}

	return friends, total, nil
}

// materialize writes both directed edges of the friendship so each party's
// friend list includes the other.
func (s *FriendService) materialize(ctx context.Context, tx Tx, userA, userB uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO friends (user_id, friend_id)
		 VALUES ($1, $2), ($2, $1)
		 ON CONFLICT (user_id, friend_id) DO NOTHING`,
		userA, userB,
	)
	if err != nil {
		return fmt.Errorf("materializing friendship: %w", err)
	}
	return nil
}

// getForUpdate locks the request row for the rest of the transaction so a
// racing accept/reject on the same id serializes behind it.
func (s *FriendService) getForUpdate(ctx context.Context, tx Tx, requestID uuid.UUID) (*models.FriendRequest, error) {
	request := &models.FriendRequest{}
	err := tx.QueryRow(ctx,
		`SELECT id, from_id, to_id, accepted, created_at
		 FROM friend_requests WHERE id = $1
		 FOR UPDATE`,
		requestID,
	).Scan(&request.ID, &request.FromID, &request.ToID, &request.Accepted, &request.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting friend request: %w", err)
	}
	return request, nil
}

// classifyPairConflict decides which rejection a lost insert race maps to
// by checking which direction now holds the surviving request.
func (s *FriendService) classifyPairConflict(ctx context.Context, senderID, recipientID uuid.UUID) error {
	var reciprocal bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM friend_requests WHERE from_id = $1 AND to_id = $2)",
		recipientID, senderID,
	).Scan(&reciprocal)
	if err != nil {
		return fmt.Errorf("classifying request conflict: %w", err)
	}
	if reciprocal {
		return ErrReciprocalRequest
	}
	return ErrDuplicateRequest
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
