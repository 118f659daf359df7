package bridgedb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridgestore"
	mghelper "github.com/chainsafe/solana-bridge-middleware/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating send_txs table...")
		if err := mghelper.CreateSchema(ctx, db, &bridgestore.SendTxDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &bridgestore.SendTxDao{}, "user_address", "to_chain")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping send_txs table...")
		return mghelper.DropTables(ctx, db, &bridgestore.SendTxDao{})
	})
}
