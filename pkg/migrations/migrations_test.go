package migrations

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/solana-bridge-middleware/pkg/migrations/bridgedb"
	mghelper "github.com/chainsafe/solana-bridge-middleware/pkg/pgutil"
)

func requireDockerAccess(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}

	for _, sock := range candidates {
		conn, err := net.Dial("unix", sock)
		if err == nil {
			conn.Close()
			return
		}
		if errors.Is(err, os.ErrPermission) {
			continue
		}
	}

	t.Skip("docker is not available, skipping container-backed test")
}

func TestBridgeDBMigrations_Apply(t *testing.T) {
	requireDockerAccess(t)
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, bridgedb.Migrations)

	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected migrations to run, but none were applied")
	}

	expectedTables := []string{
		"bridge_params",
		"chain_data",
		"send_nonces",
		"send_txs",
		"fulfillments",
		"token_accounts",
		"token_transfers",
		"bun_migrations",
	}

	for _, table := range expectedTables {
		mghelper.AssertTableExists(t, db, table)
	}

	expectedIndexes := []string{
		"idx_bridge_params_owner",
		"idx_chain_data_owner",
		"idx_chain_data_chain",
		"idx_send_nonces_user_address",
		"idx_send_txs_user_address",
		"idx_send_txs_to_chain",
		"idx_fulfillments_owner",
		"idx_fulfillments_from_chain",
		"idx_token_accounts_owner",
		"idx_token_transfers_from_address",
		"idx_token_transfers_to_address",
	}

	for _, index := range expectedIndexes {
		mghelper.AssertIndexExists(t, db, index)
	}
}

func TestBridgeDBMigrations_Idempotency(t *testing.T) {
	requireDockerAccess(t)
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, bridgedb.Migrations)

	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("First Migrate() failed: %v", err)
	}

	// second run applies nothing
	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Second Migrate() failed: %v", err)
	}
	if !group.IsZero() {
		t.Error("Expected no new migrations on second run")
	}

	mghelper.AssertTableExists(t, db, "bridge_params")
	mghelper.AssertTableExists(t, db, "token_accounts")
}

func TestBridgeDBMigrations_Rollback(t *testing.T) {
	requireDockerAccess(t)
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, bridgedb.Migrations)

	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	mghelper.AssertTableExists(t, db, "bridge_params")
	mghelper.AssertTableExists(t, db, "fulfillments")

	// Migrate() runs everything in one group, so Rollback drops it all
	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected rollback to process a migration")
	}

	mghelper.AssertTableNotExists(t, db, "token_transfers")
	mghelper.AssertTableNotExists(t, db, "token_accounts")
	mghelper.AssertTableNotExists(t, db, "fulfillments")
	mghelper.AssertTableNotExists(t, db, "send_txs")
	mghelper.AssertTableNotExists(t, db, "send_nonces")
	mghelper.AssertTableNotExists(t, db, "chain_data")
	mghelper.AssertTableNotExists(t, db, "bridge_params")
}
