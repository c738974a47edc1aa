package confirm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/crowdtrust/backend/internal/models"
)

// PledgeSyncArgs identifies a pledge whose payment confirmation should be
// polled. The job is enqueued in the same transaction that creates the
// pledge, so it exists iff the pledge does.
type PledgeSyncArgs struct {
	PledgeID uuid.UUID `json:"pledge_id"`
}

func (PledgeSyncArgs) Kind() string { return "pledge_confirm_sync" }

// PaymentStatus is one poll result from the external confirmation process.
type PaymentStatus struct {
	Status          string  `json:"status"`
	TransactionHash *string `json:"transaction_hash,omitempty"`
}

// StatusSource reports the external payment confirmation state for a pledge.
type StatusSource interface {
	PledgeStatus(ctx context.Context, pledgeID uuid.UUID) (PaymentStatus, error)
}

// PledgeStore is the subset of the pledge repository the worker needs.
type PledgeStore interface {
	SetChainStatus(ctx context.Context, id uuid.UUID, status string, txHash *string) error
}

const pollInterval = time.Minute

type SyncPledgeWorker struct {
	river.WorkerDefaults[PledgeSyncArgs]
	pledges PledgeStore
	source  StatusSource
}

func NewSyncPledgeWorker(pledges PledgeStore, source StatusSource) *SyncPledgeWorker {
	return &SyncPledgeWorker{pledges: pledges, source: source}
}

// Work polls the external confirmation source once. Terminal states are
// recorded and finish the job; anything else snoozes until the next poll.
func (w *SyncPledgeWorker) Work(ctx context.Context, job *river.Job[PledgeSyncArgs]) error {
	status, err := w.source.PledgeStatus(ctx, job.Args.PledgeID)
	if err != nil {
		return fmt.Errorf("poll payment status for pledge %s: %w", job.Args.PledgeID, err)
	}

	switch status.Status {
	case models.ChainStatusSuccess, models.ChainStatusError:
		return w.pledges.SetChainStatus(ctx, job.Args.PledgeID, status.Status, status.TransactionHash)
	case models.ChainStatusPending:
		if err := w.pledges.SetChainStatus(ctx, job.Args.PledgeID, models.ChainStatusPending, status.TransactionHash); err != nil {
			return err
		}
		return river.JobSnooze(pollInterval)
	default:
		// Payment not seen yet.
		return river.JobSnooze(pollInterval)
	}
}

// HTTPStatusSource polls a confirmation service over HTTP. With an empty
// base URL it reports None, which keeps jobs snoozing until a real source
// is configured.
type HTTPStatusSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPStatusSource(baseURL string) *HTTPStatusSource {
	return &HTTPStatusSource{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPStatusSource) PledgeStatus(ctx context.Context, pledgeID uuid.UUID) (PaymentStatus, error) {
	if s.BaseURL == "" {
		return PaymentStatus{Status: models.ChainStatusNone}, nil
	}
	url := fmt.Sprintf("%s/payments/%s", s.BaseURL, pledgeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PaymentStatus{}, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return PaymentStatus{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return PaymentStatus{Status: models.ChainStatusNone}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return PaymentStatus{}, fmt.Errorf("confirmation service returned status %d", resp.StatusCode)
	}
	var status PaymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return PaymentStatus{}, fmt.Errorf("decode confirmation response: %w", err)
	}
	return status, nil
}
