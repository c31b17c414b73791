package job

import (
	"context"
	"fmt"

	"github.com/creamcroissant/ovenboard/internal/notification"
)

// LedgerRefreshJob reloads the notification ledger from its backing store
// so views converge even when a mutation's broadcast was missed or came
// from another process.
type LedgerRefreshJob struct {
	Ledger *notification.Ledger
}

// NewLedgerRefreshJob constructs the refresh task.
func NewLedgerRefreshJob(ledger *notification.Ledger) *LedgerRefreshJob {
	return &LedgerRefreshJob{Ledger: ledger}
}

// Name returns the task identifier.
func (j *LedgerRefreshJob) Name() string { return "notifications.refresh" }

// Run reloads and rebroadcasts the ledger.
func (j *LedgerRefreshJob) Run(ctx context.Context) error {
	if j == nil || j.Ledger == nil {
		return fmt.Errorf("ledger refresh job dependencies not configured")
	}
	j.Ledger.Refresh(ctx)
	return nil
}
