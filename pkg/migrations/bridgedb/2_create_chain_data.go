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
		log.Println("creating chain_data table...")
		if err := mghelper.CreateSchema(ctx, db, &bridgestore.ChainDataDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &bridgestore.ChainDataDao{}, "owner", "chain")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping chain_data table...")
		return mghelper.DropTables(ctx, db, &bridgestore.ChainDataDao{})
	})
}
