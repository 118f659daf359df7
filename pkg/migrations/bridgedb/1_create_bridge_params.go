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
		log.Println("creating bridge_params table...")
		if err := mghelper.CreateSchema(ctx, db, &bridgestore.BridgeParamsDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &bridgestore.BridgeParamsDao{}, "owner")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping bridge_params table...")
		return mghelper.DropTables(ctx, db, &bridgestore.BridgeParamsDao{})
	})
}
