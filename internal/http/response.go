package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finances/internal/core"
)

// errRateLimited is translated to 429 by writeError.
var errRateLimited = errors.New("rate limit exceeded, please try again later")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError translates domain errors into client responses. Validation
// failures and auth failures carry their literal message; anything else is a
// server fault and the message is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
		return
	}

	var aerr *core.AuthError
	if errors.As(err, &aerr) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: aerr.Message})
		return
	}

	if errors.Is(err, errRateLimited) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: err.Error()})
		return
	}

	var perr *core.PreconditionError
	if errors.As(err, &perr) {
		slog.ErrorContext(r.Context(), "precondition violation", "error", err, "path", r.URL.Path)
	} else {
		slog.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// userResponse is the outward user representation. The password hash never
// leaves the server.
type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// launchResponse carries the owning user id only, never the user object.
type launchResponse struct {
	ID           int64  `json:"id"`
	Description  string `json:"description"`
	Month        int    `json:"month"`
	Year         int    `json:"year"`
	Amount       string `json:"amount"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	UserID       int64  `json:"user_id"`
	RegisteredAt string `json:"registered_at"`
}

func toLaunchResponse(l core.Launch) launchResponse {
	return launchResponse{
		ID:           l.ID,
		Description:  l.Description,
		Month:        l.Month,
		Year:         l.Year,
		Amount:       l.Amount.Decimal(),
		Type:         string(l.Type),
		Status:       string(l.Status),
		UserID:       l.UserID,
		RegisteredAt: l.RegisteredAt.Format("2006-01-02"),
	}
}

func toLaunchResponses(launches []core.Launch) []launchResponse {
	out := make([]launchResponse, len(launches))
	for i, l := range launches {
		out[i] = toLaunchResponse(l)
	}
	return out
}

type balanceResponse struct {
	Balance string `json:"balance"`
}
