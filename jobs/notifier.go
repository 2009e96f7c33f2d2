package jobs

import (
	"context"
	"time"
)

// QueueNotifier forwards quantity-below-threshold events to the background
// queue instead of sending mail inline with the stock adjustment.
type QueueNotifier struct {
	client *Client
}

// NewQueueNotifier constructs the notifier.
func NewQueueNotifier(client *Client) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) QuantityBelow(ctx context.Context, productID, combinationID int64, total int) error {
	if n == nil || n.client == nil {
		return nil
	}
	_, err := n.client.EnqueueLowStockNotify(ctx, LowStockNotifyPayload{
		ProductID:     productID,
		CombinationID: combinationID,
		Total:         total,
		OccurredAt:    time.Now(),
	})
	return err
}
