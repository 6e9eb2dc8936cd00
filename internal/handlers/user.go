package handlers

import (
	"net/http"

	"socialgraph/internal/reporting"
	"socialgraph/internal/services"
)

type UserHandler struct {
	userService services.UserServiceInterface
	reporter    reporting.Reporter
}

func NewUserHandler(userService services.UserServiceInterface, reporter reporting.Reporter) *UserHandler {
	return &UserHandler{
		userService: userService,
		reporter:    reporter,
	}
}

// Search lists users matching the query parameters, paginated. Without any
// filter it pages through the whole directory.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	params := parsePageParams(r)
	query := r.URL.Query()

	results, total, err := h.userService.Search(r.Context(), services.SearchParams{
		Query:    query.Get("q"),
		Email:    query.Get("email"),
		Username: query.Get("username"),
		Limit:    params.Limit(),
		Offset:   params.Offset(),
	})
	if err != nil {
		h.reporter.CaptureException(r.Context(), err, map[string]interface{}{"user_id": user.ID.String()})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, newPageResponse(r, params, total, results))
}
