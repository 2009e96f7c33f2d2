package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	flagged int
	err     error
	calls   int
}

func (s *fakeScanner) ScanLowStock(ctx context.Context) (int, error) {
	s.calls++
	return s.flagged, s.err
}

func TestLowStockScanHandler(t *testing.T) {
	scanner := &fakeScanner{flagged: 3}
	handler := NewLowStockScanHandler(scanner, slog.Default())

	task, err := NewLowStockScanTask(time.Now())
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, 1, scanner.calls)
}

func TestLowStockScanHandlerPropagatesErrors(t *testing.T) {
	scanner := &fakeScanner{err: errors.New("boom")}
	handler := NewLowStockScanHandler(scanner, slog.Default())

	task, err := NewLowStockScanTask(time.Now())
	require.NoError(t, err)

	require.Error(t, handler(context.Background(), task))
}

func TestLowStockScanHandlerSkipsBadPayload(t *testing.T) {
	scanner := &fakeScanner{}
	handler := NewLowStockScanHandler(scanner, slog.Default())

	bad := asynq.NewTask(TaskLowStockScan, []byte("{"))
	err := handler(context.Background(), bad)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, scanner.calls)
}
