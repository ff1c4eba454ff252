package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyPenalty(t *testing.T) {
	dueDate := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(1000)
	rate := decimal.NewFromInt(5)       // 5%
	cap := decimal.NewFromFloat(0.25)   // 25% of amount

	tests := []struct {
		name     string
		now      time.Time
		rate     decimal.Decimal
		cap      decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "on time owes nothing",
			now:      dueDate.AddDate(0, 0, -1),
			rate:     rate,
			cap:      cap,
			expected: decimal.Zero,
		},
		{
			name:     "exactly on due date owes nothing",
			now:      dueDate,
			rate:     rate,
			cap:      cap,
			expected: decimal.Zero,
		},
		{
			name:     "one day late owes flat rate",
			now:      dueDate.AddDate(0, 0, 1),
			rate:     rate,
			cap:      cap,
			expected: decimal.NewFromInt(50),
		},
		{
			name:     "a year late owes the same flat rate",
			now:      dueDate.AddDate(1, 0, 0),
			rate:     rate,
			cap:      cap,
			expected: decimal.NewFromInt(50),
		},
		{
			name:     "penalty clamped to cap",
			now:      dueDate.AddDate(0, 0, 10),
			rate:     decimal.NewFromInt(40),
			cap:      cap,
			expected: decimal.NewFromInt(250), // 40% would be 400, capped at 25% of 1000
		},
		{
			name:     "zero cap disables clamping",
			now:      dueDate.AddDate(0, 0, 10),
			rate:     decimal.NewFromInt(40),
			cap:      decimal.Zero,
			expected: decimal.NewFromInt(400),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			penalty := ApplyPenalty(amount, dueDate, tt.now, tt.rate, tt.cap)
			assert.True(t, penalty.Equal(tt.expected), "got %s, want %s", penalty, tt.expected)
		})
	}
}
