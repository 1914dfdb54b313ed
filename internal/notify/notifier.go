package notify

import (
	"context"

	"vendora-be/internal/logger"

	"go.uber.org/zap"
)

// Notifier is the outbound collaborator told which retailers were affected by
// a placement. Email/push delivery lives outside this service.
type Notifier interface {
	OrderPlaced(ctx context.Context, orderID uint, retailerIDs []uint)
}

type logNotifier struct{}

func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) OrderPlaced(ctx context.Context, orderID uint, retailerIDs []uint) {
	logger.FromCtx(ctx).Info("order placed notification",
		zap.Uint("order_id", orderID),
		zap.Uints("retailer_ids", retailerIDs),
	)
}
