package bridgedb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/solana-bridge-middleware/pkg/ledger"
	mghelper "github.com/chainsafe/solana-bridge-middleware/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating token_accounts and token_transfers tables...")
		if err := mghelper.CreateSchema(ctx, db, &ledger.TokenAccountDao{}, &ledger.TokenTransferDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &ledger.TokenAccountDao{}, "owner"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledger.TokenTransferDao{}, "from_address", "to_address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping token_accounts and token_transfers tables...")
		return mghelper.DropTables(ctx, db, &ledger.TokenTransferDao{}, &ledger.TokenAccountDao{})
	})
}
