package router

import (
	"net/http"

	"github.com/crowdtrust/backend/internal/auth"
	"github.com/crowdtrust/backend/internal/backing"
	"github.com/crowdtrust/backend/internal/middleware"
	"github.com/crowdtrust/backend/internal/pledges"
	"github.com/crowdtrust/backend/internal/projects"
	"github.com/crowdtrust/backend/internal/rewards"
)

// New returns an http.Handler serving the API under /api.
// Every route runs behind ResolvePrincipal; routes that mutate state
// additionally require an authenticated user.
func New(
	authHandler *auth.Handler,
	projectHandler *projects.Handler,
	rewardHandler *rewards.Handler,
	backingHandler *backing.Handler,
	pledgeHandler *pledges.Handler,
	validator middleware.TokenValidator,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/projects", requireUser(projectHandler.Create))
	mux.HandleFunc("GET /api/projects", projectHandler.List)
	mux.HandleFunc("GET /api/projects/{project_id}", projectHandler.Get)
	mux.Handle("PATCH /api/projects/{project_id}", requireUser(projectHandler.Update))

	mux.Handle("POST /api/projects/{project_id}/rewards", requireUser(rewardHandler.Create))
	mux.Handle("PATCH /api/rewards/{reward_id}", requireUser(rewardHandler.Update))
	mux.Handle("DELETE /api/rewards/{reward_id}", requireUser(rewardHandler.Delete))

	mux.Handle("POST /api/projects/{project_id}/actions/back", requireUser(backingHandler.BackProject))

	mux.Handle("GET /api/pledges", requireUser(pledgeHandler.List))
	mux.Handle("GET /api/pledges/{pledge_id}", requireUser(pledgeHandler.Get))
	mux.Handle("PATCH /api/pledges/{pledge_id}", requireUser(pledgeHandler.Update))

	return middleware.ResolvePrincipal(validator)(mux)
}

func requireUser(h http.HandlerFunc) http.Handler {
	return middleware.RequireUser(h)
}
