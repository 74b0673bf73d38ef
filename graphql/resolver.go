package graphql

import (
	"errors"
	"fmt"

	gql "github.com/graph-gophers/graphql-go"
	"gorm.io/gorm"

	"commerce.GO/model/domain"
	catalogEntity "commerce.GO/model/entity/catalog"
	salesEntity "commerce.GO/model/entity/sales"
	catalogRepo "commerce.GO/model/repository/catalog"
	salesRepo "commerce.GO/model/repository/sales"
)

// Read-only view types. Money travels as decimal strings.

type Product struct {
	ProductID         gql.ID
	Name              string
	Slug              string
	SKU               string
	Price             string
	IsActive          bool
	StockQuantity     int32
	LowStockThreshold int32
	StockStatus       string
}

type Order struct {
	OrderID       gql.ID
	OrderNumber   string
	UserID        gql.ID
	Status        string
	PaymentStatus string
	Subtotal      string
	TotalAmount   string
	Items         []OrderItem
}

type OrderItem struct {
	ProductSKU  string
	ProductName string
	Quantity    int32
	UnitPrice   string
	TotalPrice  string
}

// RootResolver is the root for graphql-go. Everything it exposes is a
// read path; writes go through the REST surface.
type RootResolver struct {
	catalog *catalogRepo.CatalogRepository
	orders  *salesRepo.OrderRepository
}

func NewRootResolver(db *gorm.DB) *RootResolver {
	return &RootResolver{
		catalog: catalogRepo.NewCatalogRepository(db),
		orders:  salesRepo.NewOrderRepository(db),
	}
}

// NewSchema parses the schema against the root resolver.
func NewSchema(db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(Schema(), NewRootResolver(db), gql.UseFieldResolvers())
}

type ProductArgs struct {
	ID gql.ID
}

func (r *RootResolver) Product(args ProductArgs) (*Product, error) {
	id, err := parseGQLID(args.ID)
	if err != nil {
		return nil, err
	}
	p, err := r.catalog.GetProductCached(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toProduct(p), nil
}

type ProductsArgs struct {
	Limit  *int32
	Offset *int32
}

func (r *RootResolver) Products(args ProductsArgs) ([]Product, error) {
	limit, offset := 20, 0
	if args.Limit != nil {
		limit = int(*args.Limit)
	}
	if args.Offset != nil {
		offset = int(*args.Offset)
	}
	products, err := r.catalog.ListActive(limit, offset)
	if err != nil {
		return nil, err
	}
	return toProducts(products), nil
}

func (r *RootResolver) LowStockProducts() ([]Product, error) {
	products, err := r.catalog.ListLowStock()
	if err != nil {
		return nil, err
	}
	return toProducts(products), nil
}

type OrderArgs struct {
	ID gql.ID
}

func (r *RootResolver) Order(args OrderArgs) (*Order, error) {
	id, err := parseGQLID(args.ID)
	if err != nil {
		return nil, err
	}
	o, err := r.orders.FindByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toOrder(o), nil
}

type OrdersArgs struct {
	UserID *gql.ID
	Status *string
}

func (r *RootResolver) Orders(args OrdersArgs) ([]Order, error) {
	f := salesRepo.OrderFilters{}
	if args.UserID != nil {
		id, err := parseGQLID(*args.UserID)
		if err != nil {
			return nil, err
		}
		f.UserID = id
	}
	if args.Status != nil {
		f.Status = domain.OrderStatus(*args.Status)
	}
	list, _, err := r.orders.List(f)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(list))
	for i := range list {
		out = append(out, *toOrder(&list[i]))
	}
	return out, nil
}

func parseGQLID(id gql.ID) (uint, error) {
	var n uint
	if _, err := fmt.Sscanf(string(id), "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid id %q", string(id))
	}
	return n, nil
}

func toProduct(p *catalogEntity.Product) *Product {
	return &Product{
		ProductID:         gql.ID(fmt.Sprint(p.ProductID)),
		Name:              p.Name,
		Slug:              p.Slug,
		SKU:               p.SKU,
		Price:             p.Price.StringFixed(2),
		IsActive:          p.IsActive,
		StockQuantity:     int32(p.StockQuantity),
		LowStockThreshold: int32(p.LowStockThreshold),
		StockStatus:       string(p.StockStatus),
	}
}

func toProducts(ps []catalogEntity.Product) []Product {
	out := make([]Product, 0, len(ps))
	for i := range ps {
		out = append(out, *toProduct(&ps[i]))
	}
	return out
}

func toOrder(o *salesEntity.Order) *Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProductSKU:  it.ProductSKU,
			ProductName: it.ProductName,
			Quantity:    int32(it.Quantity),
			UnitPrice:   it.UnitPrice.StringFixed(2),
			TotalPrice:  it.TotalPrice.StringFixed(2),
		})
	}
	return &Order{
		OrderID:       gql.ID(fmt.Sprint(o.OrderID)),
		OrderNumber:   o.OrderNumber,
		UserID:        gql.ID(fmt.Sprint(o.UserID)),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Subtotal:      o.Subtotal.StringFixed(2),
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Items:         items,
	}
}
