// Package bridgestore is the PostgreSQL implementation of bridge.Store.
package bridgestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
	"github.com/chainsafe/solana-bridge-middleware/pkg/derive"
	"github.com/chainsafe/solana-bridge-middleware/pkg/pgutil"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the bridge record store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) idb(ctx context.Context) bun.IDB {
	return pgutil.IDB(ctx, s.db)
}

func (s *pgStore) CreateParams(ctx context.Context, key bridge.InstanceKey, p bridge.Params) error {
	_, err := s.idb(ctx).NewInsert().
		Model(toParamsDao(key, p)).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return bridge.ErrInstanceExists
		}
		return fmt.Errorf("failed to create bridge params: %w", err)
	}
	return nil
}

func (s *pgStore) GetParams(ctx context.Context, key bridge.InstanceKey) (*bridge.Params, error) {
	dao := new(BridgeParamsDao)
	err := s.idb(ctx).NewSelect().
		Model(dao).
		Where("address = ?", derive.Params(key).Hex()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bridge.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to get bridge params: %w", err)
	}
	return toParams(dao)
}

func (s *pgStore) UpdateParams(ctx context.Context, key bridge.InstanceKey, p bridge.Params) error {
	dao := toParamsDao(key, p)
	res, err := s.idb(ctx).NewUpdate().
		Model(dao).
		Column("fee_send", "fee_fulfill", "limit_send", "fee_recipient", "paused").
		Set("updated_at = NOW()").
		Where("address = ?", dao.Address).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update bridge params: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return bridge.ErrInstanceNotFound
	}
	return nil
}

func (s *pgStore) UpsertChainData(ctx context.Context, key bridge.InstanceKey, chain bridge.Bytes32, cd bridge.ChainData) error {
	dao := toChainDataDao(key, chain, cd)
	_, err := s.idb(ctx).NewInsert().
		Model(dao).
		On("CONFLICT (address) DO UPDATE").
		Set("enabled = EXCLUDED.enabled").
		Set("exchange_rate_from = EXCLUDED.exchange_rate_from").
		Set("updated_at = NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert chain data: %w", err)
	}
	return nil
}

func (s *pgStore) GetChainData(ctx context.Context, key bridge.InstanceKey, chain bridge.Bytes32) (*bridge.ChainData, error) {
	dao := new(ChainDataDao)
	err := s.idb(ctx).NewSelect().
		Model(dao).
		Where("address = ?", derive.ChainData(key, chain).Hex()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bridge.ErrChainNotFound
		}
		return nil, fmt.Errorf("failed to get chain data: %w", err)
	}
	return toChainData(dao)
}

func (s *pgStore) GetNonce(ctx context.Context, key bridge.InstanceKey, user bridge.Address) (uint64, error) {
	var nonce string
	err := s.idb(ctx).NewSelect().
		Model((*SendNonceDao)(nil)).
		Column("nonce").
		Where("address = ?", derive.SendNonce(key, user).Hex()).
		Scan(ctx, &nonce)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get send nonce: %w", err)
	}
	return parseAmount(nonce)
}

// CreateSendTx writes the outbound record and advances the sequencer in one
// step. The record insert is write-once through its primary key; the nonce
// upsert returns the post-increment value so a mismatch with tx.Nonce rolls
// the ambient transaction back.
func (s *pgStore) CreateSendTx(ctx context.Context, key bridge.InstanceKey, user bridge.Address, tx *bridge.SendTx) error {
	idb := s.idb(ctx)

	_, err := idb.NewInsert().
		Model(toSendTxDao(key, user, tx)).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return bridge.ErrNonceMismatch
		}
		return fmt.Errorf("failed to create send tx: %w", err)
	}

	owner, token, version, homeChain := keyColumns(key)
	seq := &SendNonceDao{
		Address:     derive.SendNonce(key, user).Hex(),
		Owner:       owner,
		Token:       token,
		Version:     version,
		HomeChain:   homeChain,
		UserAddress: user.Hex(),
		Nonce:       "1",
	}
	var advanced string
	err = idb.NewInsert().
		Model(seq).
		On("CONFLICT (address) DO UPDATE").
		Set("nonce = send_nonces.nonce + 1").
		Set("updated_at = NOW()").
		Returning("nonce").
		Scan(ctx, &advanced)
	if err != nil {
		return fmt.Errorf("failed to advance send nonce: %w", err)
	}
	got, err := parseAmount(advanced)
	if err != nil {
		return err
	}
	if got != tx.Nonce+1 {
		return bridge.ErrNonceMismatch
	}
	return nil
}

func (s *pgStore) ListSendTxs(ctx context.Context, key bridge.InstanceKey, user bridge.Address) ([]*bridge.SendTx, error) {
	owner, token, version, homeChain := keyColumns(key)
	var daos []SendTxDao
	err := s.idb(ctx).NewSelect().
		Model(&daos).
		Where("owner = ?", owner).
		Where("token = ?", token).
		Where("version = ?", version).
		Where("home_chain = ?", homeChain).
		Where("user_address = ?", user.Hex()).
		OrderExpr("nonce ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list send txs: %w", err)
	}
	txs := make([]*bridge.SendTx, len(daos))
	for i := range daos {
		txs[i], err = toSendTx(&daos[i])
		if err != nil {
			return nil, err
		}
	}
	return txs, nil
}

func (s *pgStore) CreateFulfillment(ctx context.Context, key bridge.InstanceKey, fromChain bridge.Bytes32, remoteNonce uint64) error {
	owner, token, version, homeChain := keyColumns(key)
	dao := &FulfillmentDao{
		Address:     derive.Fulfilled(key, fromChain, remoteNonce).Hex(),
		Owner:       owner,
		Token:       token,
		Version:     version,
		HomeChain:   homeChain,
		FromChain:   fromChain.Hex(),
		RemoteNonce: strconv.FormatUint(remoteNonce, 10),
	}
	_, err := s.idb(ctx).NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return bridge.ErrDuplicateFulfillment
		}
		return fmt.Errorf("failed to create fulfillment guard: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}
