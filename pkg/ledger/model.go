package ledger

import (
	"time"

	"github.com/uptrace/bun"
)

// TokenAccountDao maps to the 'token_accounts' table in PostgreSQL. Balances
// are NUMERIC(20,0) carried as strings because they are unsigned 64-bit
// values; arithmetic happens in SQL.
type TokenAccountDao struct {
	bun.BaseModel `bun:"table:token_accounts,alias:ta"`
	Address       string    `bun:"address,pk,type:varchar(66)"`
	Owner         string    `bun:"owner,notnull,type:varchar(66)"`
	Balance       string    `bun:"balance,notnull,type:numeric(20,0)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// TokenTransferDao maps to the 'token_transfers' journal table. Seq is the
// ledger height analog recorded on bridge send receipts.
type TokenTransferDao struct {
	bun.BaseModel `bun:"table:token_transfers,alias:tt"`
	Seq           int64     `bun:"seq,pk,autoincrement"`
	ID            string    `bun:"id,unique,notnull,type:varchar(36)"`
	FromAddress   string    `bun:"from_address,notnull,type:varchar(66)"`
	ToAddress     string    `bun:"to_address,notnull,type:varchar(66)"`
	Authority     string    `bun:"authority,notnull,type:varchar(66)"`
	Amount        string    `bun:"amount,notnull,type:numeric(20,0)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}
