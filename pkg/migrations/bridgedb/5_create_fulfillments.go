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
		log.Println("creating fulfillments table...")
		if err := mghelper.CreateSchema(ctx, db, &bridgestore.FulfillmentDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &bridgestore.FulfillmentDao{}, "owner", "from_chain")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping fulfillments table...")
		return mghelper.DropTables(ctx, db, &bridgestore.FulfillmentDao{})
	})
}
