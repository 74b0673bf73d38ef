package event

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBus_DeliversToSubscriber(t *testing.T) {
	b := NewBus(8)

	var mu sync.Mutex
	var got []string
	b.Subscribe(NameOrderCreated, func(e Event) error {
		mu.Lock()
		got = append(got, e.Name())
		mu.Unlock()
		return nil
	})

	b.Publish(OrderCreated{OrderID: 1, OrderNumber: "ORD-1"})
	b.Close()

	if len(got) != 1 || got[0] != NameOrderCreated {
		t.Fatalf("delivered = %v, want one %s", got, NameOrderCreated)
	}
}

func TestBus_WildcardAndOrder(t *testing.T) {
	b := NewBus(8)

	var mu sync.Mutex
	var got []string
	b.Subscribe("*", func(e Event) error {
		mu.Lock()
		got = append(got, e.Name())
		mu.Unlock()
		return nil
	})

	b.PublishAll([]Event{
		OrderCreated{OrderID: 1},
		OrderStatusChanged{OrderID: 1, OldStatus: "pending", NewStatus: "processing"},
		OrderCancelled{OrderID: 1, Reason: "test"},
	})
	b.Close()

	want := []string{NameOrderCreated, NameOrderStatusChanged, NameOrderCancelled}
	if len(got) != len(want) {
		t.Fatalf("delivered %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	b := NewBus(8)

	var mu sync.Mutex
	count := 0
	b.Subscribe(NameLowStockDetected, func(Event) error {
		return errors.New("notifier down")
	})
	b.Subscribe(NameLowStockDetected, func(Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	b.Publish(LowStockDetected{ProductID: 7, SKU: "SKU-7", CurrentStock: 2, Threshold: 10})
	b.Close()

	if count != 1 {
		t.Fatalf("second handler ran %d times, want 1", count)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	e, err := Decode(NameOrderCreated, map[string]interface{}{
		"order_id":     float64(12),
		"order_number": "ORD-20250101-ABCDEF",
		"user_id":      float64(3),
		"total_amount": 54.0,
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	oc, ok := e.(OrderCreated)
	if !ok {
		t.Fatalf("Decode returned %T, want OrderCreated", e)
	}
	if oc.OrderID != 12 || oc.OrderNumber != "ORD-20250101-ABCDEF" {
		t.Errorf("decoded = %+v", oc)
	}
	if !oc.TotalAmount.Equal(decimal.NewFromInt(54)) {
		t.Errorf("total = %s, want 54", oc.TotalAmount)
	}
}

func TestDecode_UnknownName(t *testing.T) {
	if _, err := Decode("order.exploded", nil); err == nil {
		t.Fatal("expected error for unknown event name")
	}
}
