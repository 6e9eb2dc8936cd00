package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"socialgraph/internal/models"
	"socialgraph/internal/reporting"
	"socialgraph/internal/services"
)

type FriendHandler struct {
	friendService services.FriendServiceInterface
	reporter      reporting.Reporter
}

func NewFriendHandler(friendService services.FriendServiceInterface, reporter reporting.Reporter) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
		reporter:      reporter,
	}
}

type SendRequestRequest struct {
	ToEmail string `json:"to_email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PendingRequestsResponse struct {
	Requests []models.PendingRequest `json:"requests"`
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SendRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.ToEmail) == "" {
		writeError(w, http.StatusBadRequest, "Recipient email is required")
		return
	}

	_, err := h.friendService.CreateRequest(r.Context(), user.ID, req.ToEmail)
	if errors.Is(err, services.ErrRequestRateLimited) {
		writeError(w, http.StatusTooManyRequests, "You can only send 3 friend requests per minute")
		return
	}
	if errors.Is(err, services.ErrRecipientNotFound) {
		writeError(w, http.StatusNotFound, "User with this email does not exist")
		return
	}
	if errors.Is(err, services.ErrCannotFriendSelf) {
		writeError(w, http.StatusBadRequest, "Cannot send friend request to yourself")
		return
	}
	if errors.Is(err, services.ErrReciprocalRequest) {
		writeError(w, http.StatusBadRequest, "This user has already sent you a friend request")
		return
	}
	if errors.Is(err, services.ErrDuplicateRequest) {
		writeError(w, http.StatusBadRequest, "Friend request already sent")
		return
	}
	if err != nil {
		h.reporter.CaptureException(r.Context(), err, map[string]interface{}{"user_id": user.ID.String()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Friend request sent successfully."})
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, "accept")
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, "reject")
}

// resolveRequest handles the shared accept/reject plumbing; the two actions
// differ only in the service call and the success message.
func (h *FriendHandler) resolveRequest(w http.ResponseWriter, r *http.Request, action string) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}

	if action == "accept" {
		err = h.friendService.AcceptRequest(r.Context(), user.ID, requestID)
	} else {
		err = h.friendService.RejectRequest(r.Context(), user.ID, requestID)
	}

	if errors.Is(err, services.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}
	if errors.Is(err, services.ErrNotRecipient) {
		writeError(w, http.StatusForbidden, "Only the recipient can respond to this request")
		return
	}
	if errors.Is(err, services.ErrAlreadyAccepted) {
		writeError(w, http.StatusBadRequest, "Friend request already accepted")
		return
	}
	if err != nil {
		h.reporter.CaptureException(r.Context(), err, map[string]interface{}{
			"user_id":    user.ID.String(),
			"request_id": requestID.String(),
		})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if action == "accept" {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Friend request accepted."})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Friend request rejected."})
}

func (h *FriendHandler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requests, err := h.friendService.ListPendingRequests(r.Context(), user.ID)
	if err != nil {
		h.reporter.CaptureException(r.Context(), err, map[string]interface{}{"user_id": user.ID.String()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PendingRequestsResponse{Requests: requests})
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	params := parsePageParams(r)
	friends, total, err := h.friendService.ListFriends(r.Context(), user.ID, params.Limit(), params.Offset())
	if err != nil {
		h.reporter.CaptureException(r.Context(), err, map[string]interface{}{"user_id": user.ID.String()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, newPageResponse(r, params, total, friends))
}
