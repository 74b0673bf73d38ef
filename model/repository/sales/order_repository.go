package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"commerce.GO/model/domain"
	salesEntity "commerce.GO/model/entity/sales"
)

// OrderFilters narrows List results.
type OrderFilters struct {
	UserID        uint
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	StartDate     *time.Time
	EndDate       *time.Time
	Search        string
	SortBy        string
	SortDesc      bool
	Page          int
	PerPage       int
}

// OrderStatistics aggregates order counts and revenue.
type OrderStatistics struct {
	TotalOrders       int64                        `json:"total_orders"`
	ByStatus          map[domain.OrderStatus]int64 `json:"by_status"`
	TotalRevenue      decimal.Decimal              `json:"total_revenue"`
	AverageOrderValue decimal.Decimal              `json:"average_order_value"`
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order (and any attached items) inside tx.
func (r *OrderRepository) Create(tx *gorm.DB, o *salesEntity.Order) error {
	return tx.Create(o).Error
}

// FindByID loads the full order graph, or domain.ErrNotFound.
func (r *OrderRepository) FindByID(id uint) (*salesEntity.Order, error) {
	var o salesEntity.Order
	err := r.db.Preload("Items").
		Preload("StatusHistories", func(db *gorm.DB) *gorm.DB {
			return db.Order("history_id ASC")
		}).
		Preload("Invoices").
		First(&o, "order_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber loads an order by its public number.
func (r *OrderRepository) FindByOrderNumber(number string) (*salesEntity.Order, error) {
	var o salesEntity.Order
	err := r.db.Preload("Items").First(&o, "order_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", number, domain.ErrNotFound)
		}
		return nil, err
	}
	return &o, nil
}

// UpdateFieldsIfStatus applies a partial update only while the order's
// current status is in allowed, reporting whether a row was claimed.
// The conditional UPDATE takes the row lock inside tx, so a concurrent
// transition serializes behind it and then matches zero rows.
func (r *OrderRepository) UpdateFieldsIfStatus(tx *gorm.DB, id uint, allowed []domain.OrderStatus, fields map[string]interface{}) (bool, error) {
	res := tx.Model(&salesEntity.Order{}).
		Where("order_id = ? AND status IN ?", id, allowed).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AppendStatusHistory inserts a history row inside tx. History is
// append-only.
func (r *OrderRepository) AppendStatusHistory(tx *gorm.DB, h *salesEntity.OrderStatusHistory) error {
	return tx.Create(h).Error
}

// StatusHistory returns all transitions for an order, oldest first.
func (r *OrderRepository) StatusHistory(orderID uint) ([]salesEntity.OrderStatusHistory, error) {
	var hs []salesEntity.OrderStatusHistory
	err := r.db.Where("order_id = ?", orderID).Order("history_id ASC").Find(&hs).Error
	return hs, err
}

// List returns filtered orders plus the total match count.
func (r *OrderRepository) List(f OrderFilters) ([]salesEntity.Order, int64, error) {
	q := r.db.Model(&salesEntity.Order{})

	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.StartDate != nil && f.EndDate != nil {
		q = q.Where("created_at BETWEEN ? AND ?", f.StartDate, f.EndDate)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("order_number LIKE ? OR shipping_name LIKE ? OR shipping_email LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := f.SortBy
	switch sortBy {
	case "created_at", "total_amount", "status", "order_number":
	default:
		sortBy = "created_at"
	}
	dir := "ASC"
	if f.SortDesc || f.SortBy == "" {
		dir = "DESC"
	}

	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 15
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	var orders []salesEntity.Order
	err := q.Preload("Items").
		Order(sortBy + " " + dir).
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&orders).Error
	return orders, total, err
}

// Statistics aggregates counts and revenue, optionally over a date
// range. Cancelled orders count but do not contribute revenue.
func (r *OrderRepository) Statistics(start, end *time.Time) (*OrderStatistics, error) {
	base := r.db.Model(&salesEntity.Order{})
	if start != nil && end != nil {
		base = base.Where("created_at BETWEEN ? AND ?", start, end)
	}

	stats := &OrderStatistics{ByStatus: make(map[domain.OrderStatus]int64)}
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status domain.OrderStatus
		N      int64
	}
	var counts []statusCount
	err := base.Session(&gorm.Session{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.ByStatus[c.Status] = c.N
	}

	type revenueRow struct {
		Total decimal.Decimal
		N     int64
	}
	var rev revenueRow
	err = base.Session(&gorm.Session{}).
		Where("status <> ?", domain.OrderCancelled).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS n").
		Scan(&rev).Error
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = rev.Total
	if rev.N > 0 {
		stats.AverageOrderValue = rev.Total.DivRound(decimal.NewFromInt(rev.N), 2)
	}
	return stats, nil
}
