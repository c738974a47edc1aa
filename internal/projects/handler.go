package projects

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crowdtrust/backend/internal/middleware"
	"github.com/crowdtrust/backend/internal/models"
	"github.com/crowdtrust/backend/internal/repository"
)

type createProjectRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Blurb          string `json:"blurb"`
	PaymentAddress string `json:"payment_address"`
	Category       string `json:"category"`
	FundingGoal    string `json:"funding_goal"`
	StartTime      int64  `json:"start_time"`
	Duration       int64  `json:"duration"`
	BaseCurrency   string `json:"base_currency"`
}

type updateProjectRequest struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	Blurb            *string  `json:"blurb"`
	PaymentAddress   *string  `json:"payment_address"`
	Category         *string  `json:"category"`
	FundingGoal      *string  `json:"funding_goal"`
	StartTime        *int64   `json:"start_time"`
	Duration         *int64   `json:"duration"`
	BaseCurrency     *string  `json:"base_currency"`
	Status           *string  `json:"status"`
	BlockchainStatus *string  `json:"blockchain_status"`
	TransactionHash  *string  `json:"transaction_hash"`
	RewardsOrder     []string `json:"rewards_order"`
}

type projectResponse struct {
	*models.Project
	Rewards []models.Reward `json:"rewards,omitempty"`
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

// Create handles POST /api/projects.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.RequestUserFrom(r.Context())
	if principal.ID == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.FundingGoal == "" {
		http.Error(w, `{"error":"name and funding_goal are required"}`, http.StatusBadRequest)
		return
	}
	goal, err := decimal.NewFromString(req.FundingGoal)
	if err != nil {
		http.Error(w, `{"error":"invalid funding_goal"}`, http.StatusBadRequest)
		return
	}
	currency := req.BaseCurrency
	if currency == "" {
		currency = models.CurrencyEthereum
	}
	project, err := h.svc.Create(r.Context(), principal.ID, CreateProps{
		Name:           req.Name,
		Description:    req.Description,
		Blurb:          req.Blurb,
		PaymentAddress: req.PaymentAddress,
		Category:       req.Category,
		FundingGoal:    goal,
		StartTime:      req.StartTime,
		Duration:       req.Duration,
		BaseCurrency:   currency,
	})
	if err != nil {
		h.log.Error("create project", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, projectResponse{Project: project})
}

// Get handles GET /api/projects/{project_id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}
	principal := middleware.RequestUserFrom(r.Context())
	project, rewards, err := h.svc.Get(r.Context(), id, principal)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error":"project not found"}`, http.StatusNotFound)
			return
		}
		h.log.Error("get project", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, projectResponse{Project: project, Rewards: rewards})
}

// List handles GET /api/projects.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.RequestUserFrom(r.Context())
	list, err := h.svc.List(r.Context(), principal)
	if err != nil {
		h.log.Error("list projects", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Update handles PATCH /api/projects/{project_id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("project_id"))
	if err != nil {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}
	principal := middleware.RequestUserFrom(r.Context())
	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	update := repository.ProjectUpdate{
		Name:             req.Name,
		Description:      req.Description,
		Blurb:            req.Blurb,
		PaymentAddress:   req.PaymentAddress,
		Category:         req.Category,
		StartTime:        req.StartTime,
		Duration:         req.Duration,
		BaseCurrency:     req.BaseCurrency,
		Status:           req.Status,
		BlockchainStatus: req.BlockchainStatus,
		TransactionHash:  req.TransactionHash,
		RewardsOrder:     req.RewardsOrder,
	}
	if req.FundingGoal != nil {
		goal, err := decimal.NewFromString(*req.FundingGoal)
		if err != nil {
			http.Error(w, `{"error":"invalid funding_goal"}`, http.StatusBadRequest)
			return
		}
		update.FundingGoal = &goal
	}

	project, err := h.svc.Update(r.Context(), id, principal, update)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, `{"error":"project not found"}`, http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		case errors.Is(err, ErrFieldsFrozen), errors.Is(err, ErrNoUpdate):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			h.log.Error("update project", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, projectResponse{Project: project})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
