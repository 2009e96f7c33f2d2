package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockNotify is the task type for low-stock admin notifications.
	TaskLowStockNotify = "stock:notify-low"
)

// LowStockNotifyPayload describes a quantity-below-threshold event.
type LowStockNotifyPayload struct {
	ProductID     int64     `json:"product_id"`
	CombinationID int64     `json:"combination_id,omitempty"`
	Total         int       `json:"total"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewLowStockNotifyTask constructs an Asynq task.
func NewLowStockNotifyTask(payload LowStockNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockNotify, data), nil
}

// HandleLowStockNotifyTask processes TaskLowStockNotify tasks. Delivery is a
// structured log line for now; mail transport hangs off the same payload.
func HandleLowStockNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload LowStockNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	slog.Warn("stock quantity below notification threshold",
		slog.Int64("product_id", payload.ProductID),
		slog.Int64("combination_id", payload.CombinationID),
		slog.Int("total", payload.Total))
	return nil
}
