package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project status lifecycle: Initial -> Review -> {Approved, Denied};
// Approved -> Prelaunch -> Active -> Complete. Backing is accepted only
// while Active.
const (
	ProjectStatusInitial   = "Initial"
	ProjectStatusReview    = "Review"
	ProjectStatusApproved  = "Approved"
	ProjectStatusDenied    = "Denied"
	ProjectStatusPrelaunch = "Prelaunch"
	ProjectStatusActive    = "Active"
	ProjectStatusComplete  = "Complete"
)

const (
	ProjectCategoryTechnology = "Technology"
	ProjectCategoryDigital    = "Digital"
	ProjectCategoryFashion    = "Fashion"
	ProjectCategoryGames      = "Games"
	ProjectCategoryArtDesign  = "ArtDesign"
	ProjectCategoryMusic      = "Music"
	ProjectCategoryMisc       = "Misc"
)

// Blockchain confirmation state recorded on projects, pledges and pledge
// items. Written by the external confirmation sync, never by the backing
// transaction itself.
const (
	ChainStatusNone    = "None"
	ChainStatusPending = "Pending"
	ChainStatusError   = "Error"
	ChainStatusSuccess = "Success"
)

const (
	CurrencyEthereum = "Ethereum"
	CurrencyTsc      = "Tsc"
)

type Project struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Blurb            string          `json:"blurb"`
	PaymentAddress   string          `json:"payment_address"`
	Category         string          `json:"category"`
	FundingGoal      decimal.Decimal `json:"funding_goal"`
	StartTime        int64           `json:"start_time"`
	Duration         int64           `json:"duration"`
	TotalPledged     decimal.Decimal `json:"total_pledged"`
	BackerCount      int             `json:"backer_count"`
	BaseCurrency     string          `json:"base_currency"`
	Status           string          `json:"status"`
	BlockchainStatus string          `json:"blockchain_status"`
	TransactionHash  *string         `json:"transaction_hash,omitempty"`
	RewardsOrder     []string        `json:"rewards_order"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PubliclyVisible reports whether the project may be shown to principals
// other than its owner and admins.
func (p *Project) PubliclyVisible() bool {
	switch p.Status {
	case ProjectStatusPrelaunch, ProjectStatusActive, ProjectStatusComplete:
		return true
	}
	return false
}

// FieldsFrozen reports whether name, funding goal and start time are frozen
// for non-admin edits in the project's current status.
func (p *Project) FieldsFrozen() bool {
	switch p.Status {
	case ProjectStatusActive, ProjectStatusComplete, ProjectStatusDenied:
		return true
	}
	return false
}
