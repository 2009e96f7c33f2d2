package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskLowStockScan triggers the periodic low-stock sweep.
	TaskLowStockScan = "stock:scan"
)

// LowStockScanPayload carries scheduling metadata.
type LowStockScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// LowStockScanner walks published products and re-applies the low-stock
// policy against current warehouse totals.
type LowStockScanner interface {
	ScanLowStock(ctx context.Context) (int, error)
}

// NewLowStockScanTask constructs an Asynq task for the periodic sweep.
func NewLowStockScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// NewLowStockScanHandler binds the scan task to a scanner implementation.
func NewLowStockScanHandler(scanner LowStockScanner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LowStockScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		flagged, err := scanner.ScanLowStock(ctx)
		if err != nil {
			return err
		}
		logger.Info("low-stock scan complete",
			slog.Int("flagged", flagged),
			slog.Time("scheduled_for", payload.ScheduledFor))
		return nil
	}
}
