package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerchant_IsActive(t *testing.T) {
	tests := []struct {
		name   string
		active bool
		want   bool
	}{
		{"active", true, true},
		{"disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Merchant{Active: tt.active}
			assert.Equal(t, tt.want, m.IsActive())
		})
	}
}

func TestOrder_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status OrderStatus
		want   bool
	}{
		{"pending", OrderStatusPending, false},
		{"paid", OrderStatusPaid, true},
		{"expired", OrderStatusExpired, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.status}
			assert.Equal(t, tt.want, o.IsTerminal())
		})
	}
}

func TestOrder_CanNotify(t *testing.T) {
	tests := []struct {
		name      string
		notifyURL string
		status    OrderStatus
		want      bool
	}{
		{"paid with url", "https://shop.example.com/notify", OrderStatusPaid, true},
		{"pending with url", "https://shop.example.com/notify", OrderStatusPending, true},
		{"expired with url", "https://shop.example.com/notify", OrderStatusExpired, false},
		{"paid without url", "", OrderStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{NotifyURL: tt.notifyURL, Status: tt.status}
			assert.Equal(t, tt.want, o.CanNotify())
		})
	}
}

func TestOrderStatus_Text(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   string
	}{
		{OrderStatusPending, "pending"},
		{OrderStatusPaid, "paid"},
		{OrderStatusExpired, "expired"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.Text())
	}
}

func TestOrderStatus_Constants(t *testing.T) {
	assert.Equal(t, OrderStatus(0), OrderStatusPending)
	assert.Equal(t, OrderStatus(1), OrderStatusPaid)
	assert.Equal(t, OrderStatus(2), OrderStatusExpired)
}

func TestCallbackStatus_Constants(t *testing.T) {
	assert.Equal(t, CallbackStatus(0), CallbackStatusNone)
	assert.Equal(t, CallbackStatus(1), CallbackStatusOK)
	assert.Equal(t, CallbackStatus(2), CallbackStatusFailed)
	assert.Equal(t, CallbackStatus(3), CallbackStatusInFlight)
}

func TestMatchResult_Constants(t *testing.T) {
	assert.Equal(t, "query failure", MatchResultQueryFailure)
	assert.Equal(t, "no pending orders", MatchResultNoPending)
	assert.Equal(t, "no positive change", MatchResultNoPositiveChange)
	assert.Equal(t, "no subset match", MatchResultNoSubset)
	assert.Equal(t, "matched", MatchResultMatched)
}
