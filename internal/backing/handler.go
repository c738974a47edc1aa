package backing

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crowdtrust/backend/internal/middleware"
	"github.com/crowdtrust/backend/internal/models"
)

type backRequestItem struct {
	RewardID string `json:"reward_id"`
	Quantity int    `json:"quantity"`
}

type backRequest struct {
	Rewards []backRequestItem `json:"rewards"`
}

type backResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Backer is the service interface the handler depends on.
type Backer interface {
	BackProject(ctx context.Context, projectID, backerID uuid.UUID, selections []RewardSelection) (*models.Pledge, error)
}

type Handler struct {
	svc Backer
	log *slog.Logger
}

func NewHandler(svc Backer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// BackProject handles POST /api/projects/{project_id}/actions/back.
func (h *Handler) BackProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}

	principal := middleware.RequestUserFrom(r.Context())
	if principal.ID == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req backRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	selections := make([]RewardSelection, 0, len(req.Rewards))
	for _, line := range req.Rewards {
		rewardID, err := uuid.Parse(line.RewardID)
		if err != nil {
			http.Error(w, `{"error":"invalid reward id"}`, http.StatusBadRequest)
			return
		}
		selections = append(selections, RewardSelection{RewardID: rewardID, Quantity: line.Quantity})
	}

	pledge, err := h.svc.BackProject(r.Context(), projectID, principal.ID, selections)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, backResponse{
		ID:        pledge.ID.String(),
		ProjectID: pledge.ProjectID.String(),
		UserID:    pledge.UserID.String(),
		Comment:   pledge.Comment,
		CreatedAt: pledge.CreatedAt,
		UpdatedAt: pledge.UpdatedAt,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrProjectInactive), errors.Is(err, ErrUnknownReward),
		errors.Is(err, ErrQuantityRange), errors.Is(err, ErrNoSelections):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrUserBlocked):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		h.log.Error("back project failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
