package bridgestore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
	"github.com/chainsafe/solana-bridge-middleware/pkg/derive"
)

// Every record row is keyed by the address derived from its tuple, so a
// record is reachable only at a location derivable from the identities that
// own it. Amounts are NUMERIC(20,0) carried as strings in the DAOs because
// they are unsigned 64-bit values that do not fit BIGINT.

// BridgeParamsDao maps to the 'bridge_params' table in PostgreSQL.
type BridgeParamsDao struct {
	bun.BaseModel `bun:"table:bridge_params,alias:bp"`
	Address       string    `bun:"address,pk,type:varchar(66)"`
	Owner         string    `bun:"owner,notnull,type:varchar(66)"`
	Token         string    `bun:"token,notnull,type:varchar(66)"`
	Version       int64     `bun:"version,notnull"`
	HomeChain     string    `bun:"home_chain,notnull,type:varchar(66)"`
	FeeSend       int32     `bun:"fee_send,notnull,type:integer"`
	FeeFulfill    int32     `bun:"fee_fulfill,notnull,type:integer"`
	LimitSend     string    `bun:"limit_send,notnull,type:numeric(20,0)"`
	FeeRecipient  string    `bun:"fee_recipient,notnull,type:varchar(66)"`
	Paused        bool      `bun:"paused,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// ChainDataDao maps to the 'chain_data' table in PostgreSQL.
type ChainDataDao struct {
	bun.BaseModel    `bun:"table:chain_data,alias:cd"`
	Address          string    `bun:"address,pk,type:varchar(66)"`
	Owner            string    `bun:"owner,notnull,type:varchar(66)"`
	Token            string    `bun:"token,notnull,type:varchar(66)"`
	Version          int64     `bun:"version,notnull"`
	HomeChain        string    `bun:"home_chain,notnull,type:varchar(66)"`
	Chain            string    `bun:"chain,notnull,type:varchar(66)"`
	Enabled          bool      `bun:"enabled,notnull"`
	ExchangeRateFrom string    `bun:"exchange_rate_from,notnull,type:numeric(20,0)"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// SendNonceDao maps to the 'send_nonces' table in PostgreSQL.
type SendNonceDao struct {
	bun.BaseModel `bun:"table:send_nonces,alias:sn"`
	Address       string    `bun:"address,pk,type:varchar(66)"`
	Owner         string    `bun:"owner,notnull,type:varchar(66)"`
	Token         string    `bun:"token,notnull,type:varchar(66)"`
	Version       int64     `bun:"version,notnull"`
	HomeChain     string    `bun:"home_chain,notnull,type:varchar(66)"`
	UserAddress   string    `bun:"user_address,notnull,type:varchar(66)"`
	Nonce         string    `bun:"nonce,notnull,type:numeric(20,0)"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// SendTxDao maps to the 'send_txs' table in PostgreSQL.
type SendTxDao struct {
	bun.BaseModel `bun:"table:send_txs,alias:st"`
	Address       string    `bun:"address,pk,type:varchar(66)"`
	Owner         string    `bun:"owner,notnull,type:varchar(66)"`
	Token         string    `bun:"token,notnull,type:varchar(66)"`
	Version       int64     `bun:"version,notnull"`
	HomeChain     string    `bun:"home_chain,notnull,type:varchar(66)"`
	UserAddress   string    `bun:"user_address,notnull,type:varchar(66)"`
	Nonce         string    `bun:"nonce,notnull,type:numeric(20,0)"`
	Initiator     string    `bun:"initiator,notnull,type:varchar(66)"`
	Amount        string    `bun:"amount,notnull,type:numeric(20,0)"`
	ToAddress     string    `bun:"to_address,notnull,type:varchar(66)"`
	Timestamp     int64     `bun:"timestamp,notnull"`
	ToChain       string    `bun:"to_chain,notnull,type:varchar(66)"`
	Block         string    `bun:"block,notnull,type:numeric(20,0)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// FulfillmentDao maps to the 'fulfillments' table in PostgreSQL. The row has
// no payload: the primary key existing is the double-spend signal, and the
// unique constraint makes creation a true insert-if-absent.
type FulfillmentDao struct {
	bun.BaseModel `bun:"table:fulfillments,alias:f"`
	Address       string    `bun:"address,pk,type:varchar(66)"`
	Owner         string    `bun:"owner,notnull,type:varchar(66)"`
	Token         string    `bun:"token,notnull,type:varchar(66)"`
	Version       int64     `bun:"version,notnull"`
	HomeChain     string    `bun:"home_chain,notnull,type:varchar(66)"`
	FromChain     string    `bun:"from_chain,notnull,type:varchar(66)"`
	RemoteNonce   string    `bun:"remote_nonce,notnull,type:numeric(20,0)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func keyColumns(key bridge.InstanceKey) (owner, token string, version int64, homeChain string) {
	return key.Owner.Hex(), key.Token.Hex(), int64(key.Version), key.HomeChain.Hex()
}

func toParamsDao(key bridge.InstanceKey, p bridge.Params) *BridgeParamsDao {
	owner, token, version, homeChain := keyColumns(key)
	return &BridgeParamsDao{
		Address:      derive.Params(key).Hex(),
		Owner:        owner,
		Token:        token,
		Version:      version,
		HomeChain:    homeChain,
		FeeSend:      int32(p.FeeSend),
		FeeFulfill:   int32(p.FeeFulfill),
		LimitSend:    strconv.FormatUint(p.LimitSend, 10),
		FeeRecipient: p.FeeRecipient.Hex(),
		Paused:       p.Paused,
	}
}

func toParams(dao *BridgeParamsDao) (*bridge.Params, error) {
	limit, err := parseAmount(dao.LimitSend)
	if err != nil {
		return nil, fmt.Errorf("bridge_params %s: %w", dao.Address, err)
	}
	var recipient bridge.Address
	if err := recipient.UnmarshalText([]byte(dao.FeeRecipient)); err != nil {
		return nil, fmt.Errorf("bridge_params %s: %w", dao.Address, err)
	}
	return &bridge.Params{
		FeeSend:      uint16(dao.FeeSend),
		FeeFulfill:   uint16(dao.FeeFulfill),
		LimitSend:    limit,
		FeeRecipient: recipient,
		Paused:       dao.Paused,
	}, nil
}

func toChainDataDao(key bridge.InstanceKey, chain bridge.Bytes32, cd bridge.ChainData) *ChainDataDao {
	owner, token, version, homeChain := keyColumns(key)
	return &ChainDataDao{
		Address:          derive.ChainData(key, chain).Hex(),
		Owner:            owner,
		Token:            token,
		Version:          version,
		HomeChain:        homeChain,
		Chain:            chain.Hex(),
		Enabled:          cd.Enabled,
		ExchangeRateFrom: strconv.FormatUint(cd.ExchangeRateFrom, 10),
	}
}

func toChainData(dao *ChainDataDao) (*bridge.ChainData, error) {
	rate, err := parseAmount(dao.ExchangeRateFrom)
	if err != nil {
		return nil, fmt.Errorf("chain_data %s: %w", dao.Address, err)
	}
	return &bridge.ChainData{
		Enabled:          dao.Enabled,
		ExchangeRateFrom: rate,
	}, nil
}

func toSendTxDao(key bridge.InstanceKey, user bridge.Address, tx *bridge.SendTx) *SendTxDao {
	owner, token, version, homeChain := keyColumns(key)
	return &SendTxDao{
		Address:     derive.SendTx(key, user, tx.Nonce).Hex(),
		Owner:       owner,
		Token:       token,
		Version:     version,
		HomeChain:   homeChain,
		UserAddress: user.Hex(),
		Nonce:       strconv.FormatUint(tx.Nonce, 10),
		Initiator:   tx.Initiator.Hex(),
		Amount:      strconv.FormatUint(tx.Amount, 10),
		ToAddress:   tx.To.Hex(),
		Timestamp:   tx.Timestamp,
		ToChain:     tx.ToChain.Hex(),
		Block:       strconv.FormatUint(tx.Block, 10),
	}
}

func toSendTx(dao *SendTxDao) (*bridge.SendTx, error) {
	nonce, err := parseAmount(dao.Nonce)
	if err != nil {
		return nil, fmt.Errorf("send_tx %s: %w", dao.Address, err)
	}
	amount, err := parseAmount(dao.Amount)
	if err != nil {
		return nil, fmt.Errorf("send_tx %s: %w", dao.Address, err)
	}
	block, err := parseAmount(dao.Block)
	if err != nil {
		return nil, fmt.Errorf("send_tx %s: %w", dao.Address, err)
	}
	var initiator bridge.Address
	if err := initiator.UnmarshalText([]byte(dao.Initiator)); err != nil {
		return nil, fmt.Errorf("send_tx %s: %w", dao.Address, err)
	}
	var to, toChain bridge.Bytes32
	if err := to.UnmarshalText([]byte(dao.ToAddress)); err != nil {
		return nil, fmt.Errorf("send_tx %s: %w", dao.Address, err)
	}
	if err := toChain.UnmarshalText([]byte(dao.ToChain)); err != nil {
		return nil, fmt.Errorf("send_tx %s: %w", dao.Address, err)
	}
	return &bridge.SendTx{
		Initiator: initiator,
		Amount:    amount,
		To:        to,
		Nonce:     nonce,
		Timestamp: dao.Timestamp,
		ToChain:   toChain,
		Block:     block,
	}, nil
}

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric column value %q: %w", s, err)
	}
	return v, nil
}
