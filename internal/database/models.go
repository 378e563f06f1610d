package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// User is the bun model for the users table
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:now()"`
}

// Holding is the bun model for the holdings table.
// Prices are numeric columns; decimal avoids float money math.
type Holding struct {
	bun.BaseModel `bun:"table:holdings,alias:h"`

	ID           uuid.UUID       `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()"`
	UserID       uuid.UUID       `bun:"user_id,notnull,type:uuid"`
	StockName    string          `bun:"stock_name,notnull"`
	Ticker       string          `bun:"ticker,notnull"`
	Quantity     int64           `bun:"quantity,notnull"`
	BuyPrice     decimal.Decimal `bun:"buy_price,notnull,type:numeric(18,4)"`
	CurrentPrice decimal.Decimal `bun:"current_price,notnull,type:numeric(18,4)"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt    time.Time       `bun:"updated_at,nullzero,notnull,default:now()"`
}
