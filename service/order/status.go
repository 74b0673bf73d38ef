package order

import (
	"fmt"

	"commerce.GO/model/domain"
)

// allowedTransitions is the strict allow-list of legal status moves.
// No self-loops; delivered and cancelled are terminal.
var allowedTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderPending:    {domain.OrderProcessing, domain.OrderCancelled},
	domain.OrderProcessing: {domain.OrderShipped, domain.OrderCancelled},
	domain.OrderShipped:    {domain.OrderDelivered},
	domain.OrderDelivered:  {},
	domain.OrderCancelled:  {},
}

// ValidateTransition fails with ErrIllegalTransition unless target is
// in current's allow-set.
func ValidateTransition(current, target domain.OrderStatus) error {
	for _, allowed := range allowedTransitions[current] {
		if allowed == target {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s: %w", current, target, domain.ErrIllegalTransition)
}
