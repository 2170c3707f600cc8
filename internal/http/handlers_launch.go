package http

import (
	"net/http"
	"strconv"
	"strings"

	"finances/internal/core"
)

func (s *Server) handleCreateLaunch(w http.ResponseWriter, r *http.Request) {
	body, err := parseBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	launch, err := launchFromBody(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.launches.Create(r.Context(), launch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLaunchResponse(created))
}

func (s *Server) handleGetLaunch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid launch id"})
		return
	}

	launch, err := s.launches.ByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if launch == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "launch not found"})
		return
	}

	writeJSON(w, http.StatusOK, toLaunchResponse(*launch))
}

func (s *Server) handleUpdateLaunch(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.existingLaunch(w, r)
	if !ok {
		return
	}

	body, err := parseBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	launch, err := launchFromBody(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	launch.ID = existing.ID
	launch.RegisteredAt = existing.RegisteredAt
	if !body.Has("status") {
		launch.Status = existing.Status
	}

	updated, err := s.launches.Update(r.Context(), launch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLaunchResponse(updated))
}

func (s *Server) handleUpdateLaunchStatus(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.existingLaunch(w, r)
	if !ok {
		return
	}

	body, err := parseBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	status, ok := core.ParseLaunchStatus(body.Get("status"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "send a valid status"})
		return
	}

	updated, err := s.launches.UpdateStatus(r.Context(), *existing, status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLaunchResponse(updated))
}

func (s *Server) handleDeleteLaunch(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.existingLaunch(w, r)
	if !ok {
		return
	}

	if err := s.launches.Delete(r.Context(), *existing); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchLaunches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID, err := strconv.ParseInt(q.Get("user"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not perform the search. user not found for the given id"})
		return
	}
	user, err := s.users.ByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not perform the search. user not found for the given id"})
		return
	}

	filter := core.LaunchFilter{UserID: core.Some(userID)}
	if v := strings.TrimSpace(q.Get("description")); v != "" {
		filter.Description = core.Some(v)
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			filter.Month = core.Some(m)
		}
	}
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			filter.Year = core.Some(y)
		}
	}

	launches, err := s.launches.Search(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLaunchResponses(launches))
}

// existingLaunch loads the launch named in the path, answering 400 when it
// does not exist (matching the update/delete contract) and false when the
// response was already written.
func (s *Server) existingLaunch(w http.ResponseWriter, r *http.Request) (*core.Launch, bool) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid launch id"})
		return nil, false
	}

	launch, err := s.launches.ByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if launch == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "launch not found"})
		return nil, false
	}
	return launch, true
}

// launchFromBody builds a candidate launch from a request payload. Amount and
// type problems surface as the same validation messages the domain uses.
func launchFromBody(body *bodyParser) (core.Launch, error) {
	launch := core.Launch{
		Description: body.Get("description"),
		Month:       body.GetInt("month"),
		Year:        body.GetInt("year"),
		UserID:      body.GetInt64("user"),
	}

	if v := body.Get("amount"); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return core.Launch{}, &core.ValidationError{Message: "provide a valid amount."}
		}
		launch.Amount = core.Money{Cents: cents}
	}

	if v := body.Get("type"); v != "" {
		typ, ok := core.ParseLaunchType(v)
		if !ok {
			return core.Launch{}, &core.ValidationError{Message: "provide a launch type."}
		}
		launch.Type = typ
	}

	if v := body.Get("status"); v != "" {
		status, ok := core.ParseLaunchStatus(v)
		if !ok {
			return core.Launch{}, &core.ValidationError{Message: "send a valid status"}
		}
		launch.Status = status
	}

	return launch, nil
}
