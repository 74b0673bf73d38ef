package event

import (
	"fmt"
	"log"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// Notifier performs the side effect for a delivered event (email,
// webhook, alerting). At-least-once delivery is assumed downstream;
// consumers are expected to be idempotent.
type Notifier interface {
	Notify(Event) error
}

// LogNotifier writes events to the process log. Default wiring when no
// real notifier is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(e Event) error {
	log.Printf("notify: %s %+v", e.Name(), e)
	return nil
}

// Dispatcher connects a Bus to a Notifier.
type Dispatcher struct {
	notifier Notifier
}

func NewDispatcher(n Notifier) *Dispatcher {
	if n == nil {
		n = LogNotifier{}
	}
	return &Dispatcher{notifier: n}
}

// Attach subscribes the dispatcher to every event on the bus.
func (d *Dispatcher) Attach(b *Bus) {
	b.Subscribe("*", func(e Event) error {
		return d.notifier.Notify(e)
	})
}

// Decode rebuilds a typed event from a name and a generic payload map,
// as read back from a JSON queue or log. Unknown names are an error.
func Decode(name string, payload map[string]interface{}) (Event, error) {
	var (
		out Event
		err error
	)
	switch name {
	case NameOrderCreated:
		var e OrderCreated
		err = decodePayload(payload, &e)
		out = e
	case NameOrderStatusChanged:
		var e OrderStatusChanged
		err = decodePayload(payload, &e)
		out = e
	case NameOrderCancelled:
		var e OrderCancelled
		err = decodePayload(payload, &e)
		out = e
	case NameLowStockDetected:
		var e LowStockDetected
		err = decodePayload(payload, &e)
		out = e
	default:
		return nil, fmt.Errorf("event: unknown name %q", name)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decimalHook converts JSON numbers and strings into decimal.Decimal
// fields during payload decoding.
func decimalHook() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(decimal.Decimal{}) {
			return data, nil
		}
		switch v := data.(type) {
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case string:
			return decimal.NewFromString(v)
		}
		return data, nil
	}
}

func decodePayload(payload map[string]interface{}, target interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook:       decimalHook(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}
