package models

import (
	"encoding/json"
	"testing"
)

func TestOrderStatusUnmarshal(t *testing.T) {
	for _, tag := range []string{"OPEN", "CANCELLED", "FILLED", "PARTIAL_FILL", "CANCELLING"} {
		var status OrderStatus
		if err := json.Unmarshal([]byte(`"`+tag+`"`), &status); err != nil {
			t.Errorf("status %q should decode, got error: %v", tag, err)
		}
		if string(status) != tag {
			t.Errorf("status %q decoded as %q", tag, status)
		}
	}

	var status OrderStatus
	if err := json.Unmarshal([]byte(`"REJECTED"`), &status); err == nil {
		t.Error("unknown status tag should fail to decode")
	}
	if err := json.Unmarshal([]byte(`42`), &status); err == nil {
		t.Error("non-string status should fail to decode")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	terminal := map[OrderStatus]bool{
		OrderStatusOpen:        false,
		OrderStatusCancelled:   true,
		OrderStatusFilled:      true,
		OrderStatusPartialFill: false,
		OrderStatusCancelling:  false,
	}
	for status, want := range terminal {
		if status.Terminal() != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, status.Terminal(), want)
		}
	}
}

func TestValidTransition(t *testing.T) {
	cases := []struct {
		old, new OrderStatus
		want     bool
	}{
		{OrderStatusOpen, OrderStatusPartialFill, true},
		{OrderStatusPartialFill, OrderStatusFilled, true},
		{OrderStatusOpen, OrderStatusOpen, true},
		{OrderStatusCancelling, OrderStatusCancelled, true},
		{OrderStatusFilled, OrderStatusOpen, false},
		{OrderStatusCancelled, OrderStatusPartialFill, false},
		{OrderStatusFilled, OrderStatusCancelled, true},
	}
	for _, c := range cases {
		if got := ValidTransition(c.old, c.new); got != c.want {
			t.Errorf("ValidTransition(%s, %s) = %v, want %v", c.old, c.new, got, c.want)
		}
	}
}

func TestOrderRecordRoundTrip(t *testing.T) {
	const wire = `{
		"order_id": "e1a4b1b4-aa6e-11e9-9e2f-0242ac130002",
		"account_id": "f3b7e8a2-aa6e-11e9-9e2f-0242ac130002",
		"order_symbol": "ETH_USDT",
		"order_side": "BUY",
		"status": "PARTIAL_FILL",
		"createTime": 1563314497000,
		"type": "limit",
		"order_price": "140.000",
		"order_size": "0.500",
		"executed": "0.125",
		"stop_price": "0.000",
		"avg": "139.750"
	}`

	var record OrderRecord
	if err := json.Unmarshal([]byte(wire), &record); err != nil {
		t.Fatalf("failed to decode order record: %v", err)
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("failed to encode order record: %v", err)
	}
	var again OrderRecord
	if err := json.Unmarshal(encoded, &again); err != nil {
		t.Fatalf("failed to decode re-encoded order record: %v", err)
	}

	if again.OrderID != record.OrderID || again.AccountID != record.AccountID {
		t.Errorf("ids changed in round trip: %+v vs %+v", again, record)
	}
	if again.Status != record.Status || again.OrderSide != record.OrderSide || again.Type != record.Type {
		t.Errorf("enums changed in round trip: %+v vs %+v", again, record)
	}
	if again.CreateTime != record.CreateTime {
		t.Errorf("create time changed in round trip: %d vs %d", again.CreateTime, record.CreateTime)
	}
	for _, pair := range [][2]string{
		{again.OrderPrice.String(), "140"},
		{again.OrderSize.String(), "0.5"},
		{again.Executed.String(), "0.125"},
		{again.StopPrice.String(), "0"},
		{again.Avg.String(), "139.75"},
	} {
		if pair[0] != pair[1] {
			t.Errorf("decimal value changed in round trip: got %s, want %s", pair[0], pair[1])
		}
	}
}
