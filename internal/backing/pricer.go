package backing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crowdtrust/backend/internal/models"
)

// Domain errors surfaced before any write happens.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserBlocked     = errors.New("user is blocked")
	ErrProjectInactive = errors.New("cannot back inactive project")
	ErrUnknownReward   = errors.New("unknown reward")
	ErrQuantityRange   = errors.New("quantity out of range")
	ErrNoSelections    = errors.New("no rewards selected")
)

const (
	minQuantity = 1
	maxQuantity = 1000
)

// RewardSelection is one requested line of a backing request.
type RewardSelection struct {
	RewardID uuid.UUID
	Quantity int
}

// PriceSelections resolves each selection against the reward catalog
// snapshot and returns priced pledge item drafts plus the exact pledge
// total. The paid price is snapshotted from the catalog: later reward price
// edits do not affect items priced here. Pure function, no storage access.
func PriceSelections(selections []RewardSelection, rewards []models.Reward, currency string) ([]models.PledgeItem, decimal.Decimal, error) {
	if len(selections) == 0 {
		return nil, decimal.Zero, ErrNoSelections
	}

	byID := make(map[uuid.UUID]models.Reward, len(rewards))
	for _, r := range rewards {
		byID[r.ID] = r
	}

	items := make([]models.PledgeItem, 0, len(selections))
	total := decimal.Zero
	for _, sel := range selections {
		if sel.Quantity < minQuantity || sel.Quantity > maxQuantity {
			return nil, decimal.Zero, fmt.Errorf("reward %s quantity %d: %w", sel.RewardID, sel.Quantity, ErrQuantityRange)
		}
		reward, ok := byID[sel.RewardID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("reward %s: %w", sel.RewardID, ErrUnknownReward)
		}
		item := models.PledgeItem{
			RewardID:         reward.ID,
			Quantity:         sel.Quantity,
			PaidPrice:        reward.Price,
			PaidCurrency:     currency,
			BlockchainStatus: models.ChainStatusNone,
		}
		items = append(items, item)
		total = total.Add(item.Total())
	}
	return items, total, nil
}
