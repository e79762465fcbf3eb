package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"traveltrust/internal/chain"

	"github.com/google/uuid"
)

const (
	EntityName = "event"
	TableName  = "trust_events"

	FieldID        = "id"
	FieldTxID      = "tx_id"
	FieldType      = "type"
	FieldComponent = "component"
	FieldSender    = "sender"
	FieldSequence  = "sequence"
	FieldCreatedAt = "created_at"

	// EventTypeTransferred marks rows derived from value leaving a component.
	EventTypeTransferred = "account.transferred"

	AttributeFrom = "from"
	AttributeTo   = "to"
)

var errUnsupportedAttributes = errors.New("unsupported attributes source")

// Attributes is stored as a JSONB column.
type Attributes map[string]string

func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}

	raw, err := json.Marshal(map[string]string(a))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}

	return raw, nil
}

func (a *Attributes) Scan(src any) error {
	var raw []byte

	switch v := src.(type) {
	case nil:
		*a = Attributes{}

		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%w: %T", errUnsupportedAttributes, src)
	}

	out := Attributes{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to unmarshal attributes: %w", err)
	}

	*a = out

	return nil
}

type Event struct {
	ID         string     `db:"id"`
	TxID       string     `db:"tx_id"`
	Sequence   int        `db:"sequence"`
	Type       string     `db:"type"`
	Component  string     `db:"component"`
	Sender     string     `db:"sender"`
	Attributes Attributes `db:"attributes"`
	CreatedAt  time.Time  `db:"created_at"`
}

// FromReceipt flattens a committed receipt into rows: its events first, then
// one row per payout, numbered in that order.
func FromReceipt(receipt *chain.Receipt) []Event {
	events := make([]Event, 0, len(receipt.Events)+len(receipt.Transfers))

	row := func(typ string, attrs Attributes) Event {
		return Event{
			ID:         uuid.NewString(),
			TxID:       receipt.TxID,
			Sequence:   len(events),
			Type:       typ,
			Component:  componentOf(typ),
			Sender:     receipt.From.Hex(),
			Attributes: attrs,
			CreatedAt:  receipt.Timestamp,
		}
	}

	for _, ev := range receipt.Events {
		attrs := make(Attributes, len(ev.Attributes))
		for k, v := range ev.Attributes {
			attrs[k] = v
		}

		events = append(events, row(ev.Type, attrs))
	}

	for _, tr := range receipt.Transfers {
		events = append(events, row(EventTypeTransferred, Attributes{
			AttributeFrom:         tr.From.Hex(),
			AttributeTo:           tr.To.Hex(),
			chain.AttributeAmount: tr.Amount.String(),
		}))
	}

	return events
}

func componentOf(eventType string) string {
	component, _, _ := strings.Cut(eventType, ".")

	return component
}
