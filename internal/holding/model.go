package holding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding is one stock position owned by a user
type Holding struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"ownerId"`
	StockName    string          `json:"stockName"`
	Ticker       string          `json:"ticker"`
	Quantity     int64           `json:"quantity"`
	BuyPrice     decimal.Decimal `json:"buyPrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Invested returns the amount paid for the position
func (h *Holding) Invested() decimal.Decimal {
	return h.BuyPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// CurrentValue returns what the position is worth at the current price
func (h *Holding) CurrentValue() decimal.Decimal {
	return h.CurrentPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// Summary aggregates a user's portfolio
type Summary struct {
	TotalInvested decimal.Decimal `json:"totalInvested"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	ProfitLoss    decimal.Decimal `json:"profitLoss"`
	ProfitLossPct decimal.Decimal `json:"profitLossPct"`
	HoldingCount  int             `json:"holdingCount"`
}

// ComputeSummary derives portfolio metrics from a set of holdings.
// ProfitLossPct is zero when nothing is invested.
func ComputeSummary(holdings []*Holding) Summary {
	totalInvested := decimal.Zero
	currentValue := decimal.Zero
	for _, h := range holdings {
		totalInvested = totalInvested.Add(h.Invested())
		currentValue = currentValue.Add(h.CurrentValue())
	}

	profitLoss := currentValue.Sub(totalInvested)
	profitLossPct := decimal.Zero
	if !totalInvested.IsZero() {
		profitLossPct = profitLoss.Div(totalInvested).Mul(decimal.NewFromInt(100)).Round(4)
	}

	return Summary{
		TotalInvested: totalInvested,
		CurrentValue:  currentValue,
		ProfitLoss:    profitLoss,
		ProfitLossPct: profitLossPct,
		HoldingCount:  len(holdings),
	}
}
