package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber returns a public order number like
// ORD-20250101-3F9A2C. The random suffix makes collisions practically
// impossible; the unique index on order_number is the backstop.
func NewOrderNumber() string {
	return "ORD-" + time.Now().Format("20060102") + "-" + randomSuffix()
}

func randomSuffix() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return id[:6]
}
