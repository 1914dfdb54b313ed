package order

import "vendora-be/internal/apperror"

var (
	ErrOrderNotFound   = apperror.NotFoundf("order not found")
	ErrEmptyItems      = apperror.Validationf("order must contain at least one item")
	ErrOrderNotPending = apperror.Validationf("only pending orders can be deleted")
)

func invalidTransitionError(from, to OrderStatus) error {
	return apperror.Validationf("cannot transition order from %s to %s", from, to)
}

func invalidPaymentTransitionError(from, to PaymentStatus) error {
	return apperror.Validationf("cannot transition payment from %s to %s", from, to)
}
