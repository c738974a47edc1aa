package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reward is a priced tier offered by a project. BackerLimit is advisory:
// the backing engine does not cap backer_count against it. BackerCount is
// incremented only by the backing transaction.
type Reward struct {
	ID           uuid.UUID       `json:"id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	DeliveryTime int64           `json:"delivery_time"`
	Price        decimal.Decimal `json:"price"`
	BackerLimit  int             `json:"backer_limit"`
	BackerCount  int             `json:"backer_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
