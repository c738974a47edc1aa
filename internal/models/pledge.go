package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pledge records one backing operation. It is created together with its
// items in a single transaction; a pledge with zero items is never
// persisted.
type Pledge struct {
	ID               uuid.UUID `json:"id"`
	ProjectID        uuid.UUID `json:"project_id"`
	UserID           uuid.UUID `json:"user_id"`
	Comment          string    `json:"comment"`
	BlockchainStatus string    `json:"blockchain_status"`
	TransactionHash  *string   `json:"transaction_hash,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PledgeItem is one reward line within a pledge. PaidPrice is a snapshot of
// the reward's unit price at pledge time; later reward price edits must not
// change it. Items are immutable after creation except for their chain
// confirmation fields.
type PledgeItem struct {
	ID               uuid.UUID       `json:"id"`
	PledgeID         uuid.UUID       `json:"pledge_id"`
	RewardID         uuid.UUID       `json:"reward_id"`
	Quantity         int             `json:"quantity"`
	PaidPrice        decimal.Decimal `json:"paid_price"`
	PaidCurrency     string          `json:"paid_currency"`
	BlockchainStatus string          `json:"blockchain_status"`
	TransactionHash  *string         `json:"transaction_hash,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Total returns the exact decimal amount this item contributes to its
// pledge: unit price times quantity.
func (i PledgeItem) Total() decimal.Decimal {
	return i.PaidPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
