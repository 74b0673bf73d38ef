package order

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"commerce.GO/event"
	"commerce.GO/model/domain"
	salesEntity "commerce.GO/model/entity/sales"
	catalogRepo "commerce.GO/model/repository/catalog"
	salesRepo "commerce.GO/model/repository/sales"
	inventoryService "commerce.GO/service/inventory"
)

// Line is one requested order line.
type Line struct {
	ProductID uint  `json:"product_id"`
	VariantID *uint `json:"variant_id,omitempty"`
	Quantity  int   `json:"quantity"`
}

// ShippingInfo is the destination snapshot stored on the order.
type ShippingInfo struct {
	Name       string  `json:"shipping_name"`
	Email      string  `json:"shipping_email"`
	Phone      string  `json:"shipping_phone"`
	Address    string  `json:"shipping_address"`
	City       string  `json:"shipping_city"`
	State      *string `json:"shipping_state,omitempty"`
	Country    string  `json:"shipping_country"`
	PostalCode *string `json:"shipping_postal_code,omitempty"`
}

// CreateOrderInput carries everything CreateOrder needs. Tax, shipping
// fee and discount are caller-supplied; pricing rules live outside
// this core.
type CreateOrderInput struct {
	Lines         []Line          `json:"items"`
	Shipping      ShippingInfo    `json:"shipping"`
	Tax           decimal.Decimal `json:"tax"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

// InvoiceGenerator is invoked post-commit, fire-and-forget. Its
// failure never invalidates the committed order.
type InvoiceGenerator interface {
	Generate(orderID uint) error
}

// Engine orchestrates order creation, status transitions and
// cancellation. Each operation is one gorm transaction; domain events
// are collected during the transaction and published only after it
// commits.
type Engine struct {
	db       *gorm.DB
	catalog  *catalogRepo.CatalogRepository
	orders   *salesRepo.OrderRepository
	ledger   *inventoryService.Ledger
	bus      *event.Bus
	invoices InvoiceGenerator
}

func NewEngine(db *gorm.DB, catalog *catalogRepo.CatalogRepository, orders *salesRepo.OrderRepository, ledger *inventoryService.Ledger, bus *event.Bus, invoices InvoiceGenerator) *Engine {
	return &Engine{
		db:       db,
		catalog:  catalog,
		orders:   orders,
		ledger:   ledger,
		bus:      bus,
		invoices: invoices,
	}
}

// CreateOrder validates every line, snapshots prices, persists the
// order graph and reserves stock — all inside one transaction. Any
// failed line rolls back the whole attempt: no partial orders, no
// partial deductions.
func (e *Engine) CreateOrder(in CreateOrderInput, userID uint) (*salesEntity.Order, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	var (
		created *salesEntity.Order
		events  []event.Event
	)
	err := e.db.Transaction(func(tx *gorm.DB) error {
		// Pre-check every line before mutating anything. Reserve
		// re-checks atomically under the row lock.
		items, subtotal, err := e.buildItems(in.Lines)
		if err != nil {
			return err
		}

		total := subtotal.Add(in.Tax).Add(in.ShippingFee).Sub(in.Discount)
		o := &salesEntity.Order{
			OrderNumber:        NewOrderNumber(),
			UserID:             userID,
			Status:             domain.OrderPending,
			Subtotal:           subtotal,
			Tax:                in.Tax,
			ShippingFee:        in.ShippingFee,
			Discount:           in.Discount,
			TotalAmount:        total,
			PaymentMethod:      in.PaymentMethod,
			PaymentStatus:      domain.PaymentPending,
			ShippingName:       in.Shipping.Name,
			ShippingEmail:      in.Shipping.Email,
			ShippingPhone:      in.Shipping.Phone,
			ShippingAddress:    in.Shipping.Address,
			ShippingCity:       in.Shipping.City,
			ShippingState:      in.Shipping.State,
			ShippingCountry:    in.Shipping.Country,
			ShippingPostalCode: in.Shipping.PostalCode,
			Notes:              in.Notes,
			Items:              items,
		}
		if err := e.orders.Create(tx, o); err != nil {
			return err
		}

		for i, line := range in.Lines {
			ref := inventoryService.SKURef{ProductID: line.ProductID, VariantID: line.VariantID}
			res, err := e.ledger.Reserve(tx, ref, line.Quantity, &userID)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			events = append(events, res.Events...)
		}

		notes := "Order created"
		if err := e.orders.AppendStatusHistory(tx, &salesEntity.OrderStatusHistory{
			OrderID:   o.OrderID,
			Status:    domain.OrderPending,
			Notes:     &notes,
			ChangedBy: &userID,
		}); err != nil {
			return err
		}

		created = o
		events = append(events, event.OrderCreated{
			OrderID:     o.OrderID,
			OrderNumber: o.OrderNumber,
			UserID:      userID,
			TotalAmount: o.TotalAmount,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, line := range in.Lines {
		e.catalog.InvalidateProduct(line.ProductID)
	}
	e.afterCommit(events)
	if e.invoices != nil {
		orderID := created.OrderID
		go func() {
			if err := e.invoices.Generate(orderID); err != nil {
				log.Printf("order: invoice generation failed for order %d: %v", orderID, err)
			}
		}()
	}
	return e.orders.FindByID(created.OrderID)
}

// UpdateStatus moves an order along the status machine. Fails with
// ErrIllegalTransition; no implicit transitions, no retries.
func (e *Engine) UpdateStatus(orderID uint, target domain.OrderStatus, notes *string, actor *uint) (*salesEntity.Order, error) {
	o, err := e.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(o.Status, target); err != nil {
		return nil, err
	}

	// The snapshot check above gives the caller a precise error; the
	// conditional write below is what actually guards against a
	// concurrent transition racing this one.
	old := o.Status
	err = e.db.Transaction(func(tx *gorm.DB) error {
		claimed, err := e.orders.UpdateFieldsIfStatus(tx, o.OrderID,
			[]domain.OrderStatus{old}, map[string]interface{}{"status": target})
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("order %s left status %s concurrently: %w", o.OrderNumber, old, domain.ErrIllegalTransition)
		}
		return e.orders.AppendStatusHistory(tx, &salesEntity.OrderStatusHistory{
			OrderID:   o.OrderID,
			Status:    target,
			Notes:     notes,
			ChangedBy: actor,
		})
	})
	if err != nil {
		return nil, err
	}

	e.afterCommit([]event.Event{event.OrderStatusChanged{
		OrderID:     o.OrderID,
		OrderNumber: o.OrderNumber,
		OldStatus:   string(old),
		NewStatus:   string(target),
	}})
	return e.orders.FindByID(o.OrderID)
}

// CancelOrder restores stock for every item and marks the order
// cancelled, atomically. Only pending and processing orders qualify.
func (e *Engine) CancelOrder(orderID uint, reason string, actor *uint) (*salesEntity.Order, error) {
	o, err := e.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeCancelled() {
		return nil, fmt.Errorf("order %s in status %s: %w", o.OrderNumber, o.Status, domain.ErrNotCancellable)
	}

	var events []event.Event
	err = e.db.Transaction(func(tx *gorm.DB) error {
		// Claim the order first. A concurrent cancel (or transition)
		// serializes behind this UPDATE, matches zero rows once it
		// runs, and aborts here; the restores below run at most once
		// per order.
		claimed, err := e.orders.UpdateFieldsIfStatus(tx, o.OrderID,
			[]domain.OrderStatus{domain.OrderPending, domain.OrderProcessing},
			map[string]interface{}{
				"status":              domain.OrderCancelled,
				"cancelled_at":        tx.NowFunc(),
				"cancellation_reason": reason,
			})
		if err != nil {
			return err
		}
		if !claimed {
			return fmt.Errorf("order %s was updated concurrently: %w", o.OrderNumber, domain.ErrNotCancellable)
		}

		for _, item := range o.Items {
			ref := inventoryService.SKURef{ProductID: item.ProductID, VariantID: item.VariantID}
			res, err := e.ledger.Restore(tx, ref, item.Quantity, "Order cancellation", actor)
			if err != nil {
				return err
			}
			events = append(events, res.Events...)
		}

		return e.orders.AppendStatusHistory(tx, &salesEntity.OrderStatusHistory{
			OrderID:   o.OrderID,
			Status:    domain.OrderCancelled,
			Notes:     &reason,
			ChangedBy: actor,
		})
	})
	if err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		e.catalog.InvalidateProduct(item.ProductID)
	}
	events = append(events, event.OrderCancelled{
		OrderID:     o.OrderID,
		OrderNumber: o.OrderNumber,
		Reason:      reason,
	})
	e.afterCommit(events)
	return e.orders.FindByID(o.OrderID)
}

// buildItems validates availability for every line and returns the
// snapshot items plus the subtotal. Runs before any write.
func (e *Engine) buildItems(lines []Line) ([]salesEntity.OrderItem, decimal.Decimal, error) {
	subtotal := decimal.Zero
	items := make([]salesEntity.OrderItem, 0, len(lines))

	for i, line := range lines {
		p, err := e.catalog.GetProduct(line.ProductID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("line %d: %w", i+1, err)
		}
		if !p.IsActive {
			return nil, decimal.Zero, fmt.Errorf("line %d: product %s: %w", i+1, p.SKU, domain.ErrProductUnavailable)
		}

		name, sku := p.Name, p.SKU
		price := p.Price
		available := p.StockQuantity
		var variantDetails datatypes.JSON

		if line.VariantID != nil {
			v, err := e.catalog.GetVariant(*line.VariantID)
			if err != nil {
				return nil, decimal.Zero, fmt.Errorf("line %d: %w", i+1, err)
			}
			if v.ProductID != p.ProductID || !v.IsActive {
				return nil, decimal.Zero, fmt.Errorf("line %d: variant %d: %w", i+1, *line.VariantID, domain.ErrProductUnavailable)
			}
			sku = v.SKU
			price = v.Price
			available = v.StockQuantity
			variantDetails = v.Attributes
		}

		if available < line.Quantity {
			return nil, decimal.Zero, fmt.Errorf("line %d: product %s: %w", i+1, sku, domain.ErrInsufficientStock)
		}

		lineTotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, salesEntity.OrderItem{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			ProductName:    name,
			ProductSKU:     sku,
			VariantDetails: variantDetails,
			Quantity:       line.Quantity,
			UnitPrice:      price,
			TotalPrice:     lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	return items, subtotal, nil
}

// afterCommit publishes collected events. The transaction that
// produced them has already committed; delivery failures are the
// dispatcher's problem, never ours.
func (e *Engine) afterCommit(events []event.Event) {
	if e.bus == nil {
		return
	}
	e.bus.PublishAll(events)
}

func validateCreateInput(in CreateOrderInput) error {
	if len(in.Lines) == 0 {
		return fmt.Errorf("order: at least one item is required: %w", domain.ErrValidation)
	}
	for i, line := range in.Lines {
		if line.ProductID == 0 {
			return fmt.Errorf("order: line %d: product_id is required: %w", i+1, domain.ErrValidation)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("order: line %d: quantity must be positive: %w", i+1, domain.ErrValidation)
		}
	}
	s := in.Shipping
	if s.Name == "" || s.Email == "" || s.Phone == "" || s.Address == "" || s.City == "" || s.Country == "" {
		return fmt.Errorf("order: incomplete shipping information: %w", domain.ErrValidation)
	}
	if in.Tax.IsNegative() || in.ShippingFee.IsNegative() || in.Discount.IsNegative() {
		return fmt.Errorf("order: tax, shipping fee and discount must not be negative: %w", domain.ErrValidation)
	}
	return nil
}
