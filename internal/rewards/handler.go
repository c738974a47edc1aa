package rewards

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crowdtrust/backend/internal/middleware"
	"github.com/crowdtrust/backend/internal/repository"
)

type createRewardRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DeliveryTime int64  `json:"delivery_time"`
	Price        string `json:"price"`
	BackerLimit  int    `json:"backer_limit"`
}

type updateRewardRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	DeliveryTime *int64  `json:"delivery_time"`
	Price        *string `json:"price"`
	BackerLimit  *int    `json:"backer_limit"`
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

// Create handles POST /api/projects/{project_id}/rewards.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}
	var req createRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Price == "" {
		http.Error(w, `{"error":"name and price are required"}`, http.StatusBadRequest)
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		http.Error(w, `{"error":"invalid price"}`, http.StatusBadRequest)
		return
	}
	reward, err := h.svc.Create(r.Context(), projectID, middleware.RequestUserFrom(r.Context()), CreateProps{
		Name:         req.Name,
		Description:  req.Description,
		DeliveryTime: req.DeliveryTime,
		Price:        price,
		BackerLimit:  req.BackerLimit,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reward)
}

// Update handles PATCH /api/rewards/{reward_id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("reward_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid reward id"}`, http.StatusBadRequest)
		return
	}
	var req updateRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	update := repository.RewardUpdate{
		Name:         req.Name,
		Description:  req.Description,
		DeliveryTime: req.DeliveryTime,
		BackerLimit:  req.BackerLimit,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			http.Error(w, `{"error":"invalid price"}`, http.StatusBadRequest)
			return
		}
		update.Price = &price
	}
	reward, err := h.svc.Update(r.Context(), id, middleware.RequestUserFrom(r.Context()), update)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reward)
}

// Delete handles DELETE /api/rewards/{reward_id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("reward_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid reward id"}`, http.StatusBadRequest)
		return
	}
	if err := h.svc.Delete(r.Context(), id, middleware.RequestUserFrom(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrRewardNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrNoUpdate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.log.Error("reward operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
