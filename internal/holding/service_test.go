package holding

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store that mirrors the repository's contract:
// by-id lookups match id and owner together, misses are ErrNotFound.
type fakeStore struct {
	mu       sync.Mutex
	holdings map[uuid.UUID]*Holding
}

func newFakeStore() *fakeStore {
	return &fakeStore{holdings: make(map[uuid.UUID]*Holding)}
}

func (s *fakeStore) Create(ctx context.Context, h *Holding) (*Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *h
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.holdings[stored.ID] = &stored

	copied := stored
	return &copied, nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Holding
	for _, h := range s.holdings {
		if h.UserID == userID {
			copied := *h
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeStore) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.holdings[id]
	if !ok || h.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *h
	return &copied, nil
}

func (s *fakeStore) Update(ctx context.Context, id, userID uuid.UUID, p UpdateParams) (*Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.holdings[id]
	if !ok || h.UserID != userID {
		return nil, ErrNotFound
	}
	h.StockName = p.StockName
	h.Ticker = p.Ticker
	h.Quantity = p.Quantity
	h.BuyPrice = p.BuyPrice
	h.UpdatedAt = time.Now()

	copied := *h
	return &copied, nil
}

func (s *fakeStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.holdings[id]
	if !ok || h.UserID != userID {
		return ErrNotFound
	}
	delete(s.holdings, id)
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validParams() CreateParams {
	return CreateParams{
		StockName: "Apple Inc",
		Ticker:    "AAPL",
		Quantity:  int64Ptr(10),
		BuyPrice:  decPtr("150"),
	}
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())
	owner := uuid.New()

	created, err := service.Create(ctx, owner, validParams())
	require.NoError(t, err)

	assert.Equal(t, owner, created.UserID)
	assert.Equal(t, "Apple Inc", created.StockName)
	assert.Equal(t, "AAPL", created.Ticker)
	assert.EqualValues(t, 10, created.Quantity)
	assert.True(t, created.BuyPrice.Equal(*decPtr("150")))
	// Current price starts at the buy price; the client never supplies it
	assert.True(t, created.CurrentPrice.Equal(created.BuyPrice))
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestServiceCreateValidation(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())
	owner := uuid.New()

	tests := []struct {
		name    string
		mutate  func(*CreateParams)
		wantErr error
	}{
		{name: "missing stock name", mutate: func(p *CreateParams) { p.StockName = "" }, wantErr: ErrStockNameRequired},
		{name: "missing ticker", mutate: func(p *CreateParams) { p.Ticker = "" }, wantErr: ErrTickerRequired},
		{name: "missing quantity", mutate: func(p *CreateParams) { p.Quantity = nil }, wantErr: ErrQuantityRequired},
		{name: "negative quantity", mutate: func(p *CreateParams) { p.Quantity = int64Ptr(-1) }, wantErr: ErrQuantityNegative},
		{name: "missing buy price", mutate: func(p *CreateParams) { p.BuyPrice = nil }, wantErr: ErrBuyPriceRequired},
		{name: "negative buy price", mutate: func(p *CreateParams) { p.BuyPrice = decPtr("-0.01") }, wantErr: ErrBuyPriceNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			_, err := service.Create(ctx, owner, params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestServiceZeroQuantityAllowed(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())

	params := validParams()
	params.Quantity = int64Ptr(0)

	created, err := service.Create(ctx, uuid.New(), params)
	require.NoError(t, err)
	assert.EqualValues(t, 0, created.Quantity)
}

func TestServiceOwnershipScoping(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewService(store)

	userA := uuid.New()
	userB := uuid.New()

	created, err := service.Create(ctx, userA, validParams())
	require.NoError(t, err)

	t.Run("list is scoped", func(t *testing.T) {
		listA, err := service.List(ctx, userA)
		require.NoError(t, err)
		assert.Len(t, listA, 1)

		listB, err := service.List(ctx, userB)
		require.NoError(t, err)
		assert.Empty(t, listB)
	})

	t.Run("foreign get reads as not found", func(t *testing.T) {
		_, err := service.Get(ctx, created.ID, userB)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("foreign update reads as not found", func(t *testing.T) {
		_, err := service.Update(ctx, created.ID, userB, validParams())
		assert.ErrorIs(t, err, ErrNotFound)

		// And the record is untouched
		got, err := service.Get(ctx, created.ID, userA)
		require.NoError(t, err)
		assert.Equal(t, "Apple Inc", got.StockName)
	})

	t.Run("foreign delete reads as not found", func(t *testing.T) {
		err := service.Delete(ctx, created.ID, userB)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = service.Get(ctx, created.ID, userA)
		assert.NoError(t, err)
	})
}

func TestServiceUpdateDoesNotTouchCurrentPrice(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())
	owner := uuid.New()

	created, err := service.Create(ctx, owner, validParams())
	require.NoError(t, err)

	update := validParams()
	update.BuyPrice = decPtr("180")
	update.Quantity = int64Ptr(20)

	updated, err := service.Update(ctx, created.ID, owner, update)
	require.NoError(t, err)

	assert.True(t, updated.BuyPrice.Equal(*decPtr("180")))
	assert.EqualValues(t, 20, updated.Quantity)
	// Current price keeps its server-side value
	assert.True(t, updated.CurrentPrice.Equal(created.CurrentPrice))
}

func TestServiceDeleteIdempotence(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())
	owner := uuid.New()

	created, err := service.Create(ctx, owner, validParams())
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID, owner))

	// Double delete is a clean not-found, not a crash
	err = service.Delete(ctx, created.ID, owner)
	assert.ErrorIs(t, err, ErrNotFound)
	err = service.Delete(ctx, created.ID, owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceSummarize(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStore())
	owner := uuid.New()
	other := uuid.New()

	_, err := service.Create(ctx, owner, validParams())
	require.NoError(t, err)

	foreign := validParams()
	foreign.Ticker = "MSFT"
	_, err = service.Create(ctx, other, foreign)
	require.NoError(t, err)

	summary, err := service.Summarize(ctx, owner)
	require.NoError(t, err)

	// Only the caller's single position counts
	assert.Equal(t, 1, summary.HoldingCount)
	assert.True(t, summary.TotalInvested.Equal(*decPtr("1500")))
}
