package holding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/stockfolio/api/internal/database"
)

var ErrNotFound = errors.New("holding not found")

// Repository handles holding persistence. Every by-id query carries the
// owner predicate in the same statement: a holding that exists but belongs
// to someone else is indistinguishable from one that does not exist.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new holding
func (r *Repository) Create(ctx context.Context, h *Holding) (*Holding, error) {
	dbHolding := &database.Holding{
		UserID:       h.UserID,
		StockName:    h.StockName,
		Ticker:       h.Ticker,
		Quantity:     h.Quantity,
		BuyPrice:     h.BuyPrice,
		CurrentPrice: h.CurrentPrice,
	}

	_, err := r.db.NewInsert().
		Model(dbHolding).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	return mapDBHoldingToModel(dbHolding), nil
}

// ListByUser returns all holdings owned by the given user
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error) {
	var dbHoldings []*database.Holding
	err := r.db.NewSelect().
		Model(&dbHoldings).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	holdings := make([]*Holding, 0, len(dbHoldings))
	for _, dbh := range dbHoldings {
		holdings = append(holdings, mapDBHoldingToModel(dbh))
	}

	return holdings, nil
}

// GetByIDAndUser retrieves a holding by id, scoped to its owner
func (r *Repository) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*Holding, error) {
	dbHolding := new(database.Holding)
	err := r.db.NewSelect().
		Model(dbHolding).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	return mapDBHoldingToModel(dbHolding), nil
}

// Update mutates the client-editable fields of a holding in a single
// owner-scoped statement and returns the updated row
func (r *Repository) Update(ctx context.Context, id, userID uuid.UUID, p UpdateParams) (*Holding, error) {
	dbHolding := new(database.Holding)
	result, err := r.db.NewUpdate().
		Model(dbHolding).
		Set("stock_name = ?", p.StockName).
		Set("ticker = ?", p.Ticker).
		Set("quantity = ?", p.Quantity).
		Set("buy_price = ?", p.BuyPrice).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBHoldingToModel(dbHolding), nil
}

// Delete removes a holding in a single owner-scoped statement
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Holding)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// mapDBHoldingToModel converts database model to domain model
func mapDBHoldingToModel(dbh *database.Holding) *Holding {
	return &Holding{
		ID:           dbh.ID,
		UserID:       dbh.UserID,
		StockName:    dbh.StockName,
		Ticker:       dbh.Ticker,
		Quantity:     dbh.Quantity,
		BuyPrice:     dbh.BuyPrice,
		CurrentPrice: dbh.CurrentPrice,
		CreatedAt:    dbh.CreatedAt,
		UpdatedAt:    dbh.UpdatedAt,
	}
}
