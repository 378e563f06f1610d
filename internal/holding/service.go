package holding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrStockNameRequired = errors.New("stock name is required")
	ErrTickerRequired    = errors.New("ticker is required")
	ErrQuantityRequired  = errors.New("quantity is required")
	ErrQuantityNegative  = errors.New("quantity must not be negative")
	ErrBuyPriceRequired  = errors.New("buy price is required")
	ErrBuyPriceNegative  = errors.New("buy price must not be negative")
)

// Store defines the persistence operations the holding service needs
type Store interface {
	Create(ctx context.Context, h *Holding) (*Holding, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error)
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*Holding, error)
	Update(ctx context.Context, id, userID uuid.UUID, p UpdateParams) (*Holding, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// CreateParams holds the client-supplied fields for a new holding.
// Quantity and BuyPrice are pointers so an absent field can be told apart
// from a zero value.
type CreateParams struct {
	StockName string
	Ticker    string
	Quantity  *int64
	BuyPrice  *decimal.Decimal
}

// UpdateParams holds the client-mutable fields of a holding. The current
// price is deliberately not here: it is never taken from the client.
type UpdateParams struct {
	StockName string
	Ticker    string
	Quantity  int64
	BuyPrice  decimal.Decimal
}

// Service enforces validation and ownership on every holding operation.
// The owner is always the authenticated user; client-supplied owner fields
// are ignored.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates the fields and inserts a holding owned by userID.
// The current price starts at the buy price and is refreshed out of band.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, p CreateParams) (*Holding, error) {
	if p.StockName == "" {
		return nil, ErrStockNameRequired
	}
	if p.Ticker == "" {
		return nil, ErrTickerRequired
	}
	if p.Quantity == nil {
		return nil, ErrQuantityRequired
	}
	if *p.Quantity < 0 {
		return nil, ErrQuantityNegative
	}
	if p.BuyPrice == nil {
		return nil, ErrBuyPriceRequired
	}
	if p.BuyPrice.IsNegative() {
		return nil, ErrBuyPriceNegative
	}

	created, err := s.store.Create(ctx, &Holding{
		UserID:       userID,
		StockName:    p.StockName,
		Ticker:       p.Ticker,
		Quantity:     *p.Quantity,
		BuyPrice:     *p.BuyPrice,
		CurrentPrice: *p.BuyPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	return created, nil
}

// List returns the caller's holdings
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Holding, error) {
	return s.store.ListByUser(ctx, userID)
}

// Get returns one holding, or ErrNotFound when the id does not exist or
// belongs to another user
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*Holding, error) {
	return s.store.GetByIDAndUser(ctx, id, userID)
}

// Update validates the fields and mutates a holding the caller owns
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, p CreateParams) (*Holding, error) {
	if p.StockName == "" {
		return nil, ErrStockNameRequired
	}
	if p.Ticker == "" {
		return nil, ErrTickerRequired
	}
	if p.Quantity == nil {
		return nil, ErrQuantityRequired
	}
	if *p.Quantity < 0 {
		return nil, ErrQuantityNegative
	}
	if p.BuyPrice == nil {
		return nil, ErrBuyPriceRequired
	}
	if p.BuyPrice.IsNegative() {
		return nil, ErrBuyPriceNegative
	}

	return s.store.Update(ctx, id, userID, UpdateParams{
		StockName: p.StockName,
		Ticker:    p.Ticker,
		Quantity:  *p.Quantity,
		BuyPrice:  *p.BuyPrice,
	})
}

// Delete removes a holding the caller owns
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.store.Delete(ctx, id, userID)
}

// Summarize computes the caller's portfolio metrics
func (s *Service) Summarize(ctx context.Context, userID uuid.UUID) (Summary, error) {
	holdings, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return ComputeSummary(holdings), nil
}
