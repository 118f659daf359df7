package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
	"github.com/chainsafe/solana-bridge-middleware/pkg/pgutil"
)

type pgLedger struct {
	db *bun.DB
}

// NewLedger creates a new postgres token ledger.
func NewLedger(db *bun.DB) *pgLedger {
	return &pgLedger{db: db}
}

func (l *pgLedger) idb(ctx context.Context) bun.IDB {
	return pgutil.IDB(ctx, l.db)
}

// CreateAccount opens a token account with a zero balance. Opening an
// account that already exists is a no-op.
func (l *pgLedger) CreateAccount(ctx context.Context, addr, owner bridge.Address) error {
	dao := &TokenAccountDao{
		Address: addr.Hex(),
		Owner:   owner.Hex(),
		Balance: "0",
	}
	_, err := l.idb(ctx).NewInsert().
		Model(dao).
		On("CONFLICT (address) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create token account: %w", err)
	}
	return nil
}

func (l *pgLedger) Exists(ctx context.Context, addr bridge.Address) (bool, error) {
	exists, err := l.idb(ctx).NewSelect().
		Model((*TokenAccountDao)(nil)).
		Where("address = ?", addr.Hex()).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check token account: %w", err)
	}
	return exists, nil
}

// Transfer debits from and credits to atomically. The authority must own
// the source account; the debit fails rather than drive a balance negative.
func (l *pgLedger) Transfer(ctx context.Context, from, to, authority bridge.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	idb := l.idb(ctx)
	amountStr := strconv.FormatUint(amount, 10)

	var owner string
	err := idb.NewSelect().
		Model((*TokenAccountDao)(nil)).
		Column("owner").
		Where("address = ?", from.Hex()).
		Scan(ctx, &owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to load source account: %w", err)
	}
	if owner != authority.Hex() {
		return ErrUnauthorized
	}

	res, err := idb.NewUpdate().
		Model((*TokenAccountDao)(nil)).
		Set("balance = balance - ?::numeric", amountStr).
		Set("updated_at = NOW()").
		Where("address = ?", from.Hex()).
		Where("balance >= ?::numeric", amountStr).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to debit source account: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read debit result: %w", err)
	} else if n == 0 {
		return ErrInsufficientFunds
	}

	res, err = idb.NewUpdate().
		Model((*TokenAccountDao)(nil)).
		Set("balance = balance + ?::numeric", amountStr).
		Set("updated_at = NOW()").
		Where("address = ?", to.Hex()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to credit destination account: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read credit result: %w", err)
	} else if n == 0 {
		return ErrAccountNotFound
	}

	entry := &TokenTransferDao{
		ID:          uuid.NewString(),
		FromAddress: from.Hex(),
		ToAddress:   to.Hex(),
		Authority:   authority.Hex(),
		Amount:      amountStr,
	}
	if _, err := idb.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to journal transfer: %w", err)
	}
	return nil
}

func (l *pgLedger) Balance(ctx context.Context, addr bridge.Address) (uint64, error) {
	var balance string
	err := l.idb(ctx).NewSelect().
		Model((*TokenAccountDao)(nil)).
		Column("balance").
		Where("address = ?", addr.Hex()).
		Scan(ctx, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	v, err := strconv.ParseUint(balance, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
	return v, nil
}

// Height returns the journal sequence of the latest transfer, zero for an
// empty ledger.
func (l *pgLedger) Height(ctx context.Context) (uint64, error) {
	var height int64
	err := l.idb(ctx).NewSelect().
		Model((*TokenTransferDao)(nil)).
		ColumnExpr("COALESCE(MAX(seq), 0)").
		Scan(ctx, &height)
	if err != nil {
		return 0, fmt.Errorf("failed to get ledger height: %w", err)
	}
	return uint64(height), nil
}

// Mint credits an account out of band. Used to top up custody before the
// bridge can pay out, and by test fixtures.
func (l *pgLedger) Mint(ctx context.Context, to bridge.Address, amount uint64) error {
	amountStr := strconv.FormatUint(amount, 10)
	res, err := l.idb(ctx).NewUpdate().
		Model((*TokenAccountDao)(nil)).
		Set("balance = balance + ?::numeric", amountStr).
		Set("updated_at = NOW()").
		Where("address = ?", to.Hex()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mint: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read mint result: %w", err)
	} else if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}
