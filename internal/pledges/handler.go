package pledges

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/crowdtrust/backend/internal/middleware"
	"github.com/crowdtrust/backend/internal/models"
	"github.com/crowdtrust/backend/internal/repository"
)

type updatePledgeRequest struct {
	Comment          *string `json:"comment"`
	BlockchainStatus *string `json:"blockchain_status"`
	TransactionHash  *string `json:"transaction_hash"`
}

type pledgeResponse struct {
	*models.Pledge
	Items []models.PledgeItem `json:"pledge_items,omitempty"`
}

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Get handles GET /api/pledges/{pledge_id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("pledge_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid pledge id"}`, http.StatusBadRequest)
		return
	}
	pledge, items, err := h.svc.Get(r.Context(), id, middleware.RequestUserFrom(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pledgeResponse{Pledge: pledge, Items: items})
}

// List handles GET /api/pledges?project_id=&user_id=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var projectID, userID uuid.UUID
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, `{"error":"invalid project_id"}`, http.StatusBadRequest)
			return
		}
		projectID = id
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, `{"error":"invalid user_id"}`, http.StatusBadRequest)
			return
		}
		userID = id
	}
	list, err := h.svc.List(r.Context(), middleware.RequestUserFrom(r.Context()), projectID, userID)
	if err != nil {
		h.log.Error("list pledges", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Update handles PATCH /api/pledges/{pledge_id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("pledge_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid pledge id"}`, http.StatusBadRequest)
		return
	}
	var req updatePledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	pledge, err := h.svc.Update(r.Context(), id, middleware.RequestUserFrom(r.Context()), repository.PledgeUpdate{
		Comment:          req.Comment,
		BlockchainStatus: req.BlockchainStatus,
		TransactionHash:  req.TransactionHash,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pledgeResponse{Pledge: pledge})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrNoUpdate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.log.Error("pledge operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
