package product

import (
	"fmt"

	"vendora-be/internal/apperror"
)

// InsufficientStockError names the offending product and what is actually left.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available,
	)
}

func NotFoundError(productID uint) error {
	return apperror.NotFoundf("product %d not found", productID)
}
