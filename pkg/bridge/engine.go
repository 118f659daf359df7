package bridge

import (
	"context"
	"math/bits"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/solana-bridge-middleware/internal/metrics"
)

// Store provides key-addressed persistence for bridge records. Creates fail
// when a record already exists at the key; this is what gives send records
// their write-once semantics and the replay guard its exclusivity.
type Store interface {
	CreateParams(ctx context.Context, key InstanceKey, p Params) error
	GetParams(ctx context.Context, key InstanceKey) (*Params, error)
	UpdateParams(ctx context.Context, key InstanceKey, p Params) error

	UpsertChainData(ctx context.Context, key InstanceKey, chain Bytes32, cd ChainData) error
	GetChainData(ctx context.Context, key InstanceKey, chain Bytes32) (*ChainData, error)

	// GetNonce returns the user's next send nonce, zero when the sequencer
	// does not exist yet.
	GetNonce(ctx context.Context, key InstanceKey, user Address) (uint64, error)
	// CreateSendTx writes the outbound record at tx.Nonce and advances the
	// sequencer by exactly 1, atomically. Fails with ErrNonceMismatch if
	// tx.Nonce no longer matches the sequencer.
	CreateSendTx(ctx context.Context, key InstanceKey, user Address, tx *SendTx) error
	ListSendTxs(ctx context.Context, key InstanceKey, user Address) ([]*SendTx, error)

	// CreateFulfillment inserts the replay guard. It must be a true
	// create-if-absent: a pre-existing guard fails with
	// ErrDuplicateFulfillment and nothing else may run.
	CreateFulfillment(ctx context.Context, key InstanceKey, fromChain Bytes32, remoteNonce uint64) error
}

// TokenLedger is the external value-transfer collaborator. It enforces
// balance sufficiency and atomic debit/credit; the engine never inspects
// balances except the custody total for withdraw.
type TokenLedger interface {
	// CreateAccount opens a token account at the given address. Opening an
	// existing account is a no-op.
	CreateAccount(ctx context.Context, addr, owner Address) error
	Exists(ctx context.Context, addr Address) (bool, error)
	Transfer(ctx context.Context, from, to, authority Address, amount uint64) error
	Balance(ctx context.Context, addr Address) (uint64, error)
	// Height is the current ledger height, recorded on send receipts as the
	// origin block analog.
	Height(ctx context.Context) (uint64, error)
}

// TxRunner scopes a function to one atomic commit: either every record
// mutation and value movement inside fn commits, or none do.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AddressDeriver maps instance keys to custody account addresses. Kept as a
// func type so tests can pin addresses.
type AddressDeriver func(key InstanceKey) Address

// Engine executes bridge operations against the store and the token ledger.
// Caller identity is a precondition: requests carry owner/user addresses the
// transport layer has already authenticated.
type Engine struct {
	store   Store
	ledger  TokenLedger
	tx      TxRunner
	logger  *zap.Logger
	custody AddressDeriver
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCustodyDeriver overrides custody address derivation.
func WithCustodyDeriver(d AddressDeriver) Option {
	return func(e *Engine) { e.custody = d }
}

// NewEngine creates a bridge engine.
func NewEngine(store Store, ledger TokenLedger, tx TxRunner, logger *zap.Logger, derive AddressDeriver, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		ledger:  ledger,
		tx:      tx,
		logger:  logger,
		custody: derive,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitializeRequest creates a bridge instance.
type InitializeRequest struct {
	Key          InstanceKey
	FeeSend      uint16
	FeeFulfill   uint16
	LimitSend    uint64
	FeeRecipient Address
	Paused       bool
}

// SetParamsRequest overwrites the parameters of an existing instance.
type SetParamsRequest = InitializeRequest

// SetChainDataRequest creates or updates a chain registry entry.
type SetChainDataRequest struct {
	Key              InstanceKey
	Chain            Bytes32
	Enabled          bool
	ExchangeRateFrom uint64
}

// SendRequest moves tokens from a user into custody for bridging out.
type SendRequest struct {
	Key     InstanceKey
	User    Address
	Amount  uint64
	To      Bytes32
	ToChain Bytes32
}

// FulfillRequest releases tokens for a transfer observed on a remote chain.
// The instance owner attests the remote send happened; RemoteNonce is the
// remote chain's own send nonce and keys the replay guard.
type FulfillRequest struct {
	Key         InstanceKey
	User        Address
	Amount      uint64
	RemoteNonce uint64
	FromChain   Bytes32
}

// FulfillReceipt reports the amounts moved by a fulfillment.
type FulfillReceipt struct {
	AmountTaxed uint64 `json:"amount_taxed"`
	Fee         uint64 `json:"fee"`
}

// WithdrawRequest drains the custody account to an owner-designated address.
type WithdrawRequest struct {
	Key InstanceKey
	To  Address
}

// Initialize creates the instance parameter record and provisions the
// custody token account, owned by the bridge itself.
func (e *Engine) Initialize(ctx context.Context, req InitializeRequest) (Address, error) {
	if err := validateFees(req.FeeSend, req.FeeFulfill); err != nil {
		return Address{}, err
	}

	custody := e.custody(req.Key)
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := e.requireFeeAccount(ctx, req.FeeRecipient); err != nil {
			return err
		}
		if err := e.ledger.CreateAccount(ctx, custody, custody); err != nil {
			return err
		}
		return e.store.CreateParams(ctx, req.Key, Params{
			FeeSend:      req.FeeSend,
			FeeFulfill:   req.FeeFulfill,
			LimitSend:    req.LimitSend,
			FeeRecipient: req.FeeRecipient,
			Paused:       req.Paused,
		})
	})
	if err != nil {
		return Address{}, err
	}

	e.logger.Info("bridge instance initialized",
		zap.String("owner", req.Key.Owner.Hex()),
		zap.String("token", req.Key.Token.Hex()),
		zap.Uint64("version", req.Key.Version),
		zap.String("custody", custody.Hex()))
	return custody, nil
}

// SetParams overwrites the instance parameters in place. The record is
// addressed by the owner's identity, so only the authenticated owner can
// reach it.
func (e *Engine) SetParams(ctx context.Context, req SetParamsRequest) error {
	if err := validateFees(req.FeeSend, req.FeeFulfill); err != nil {
		return err
	}

	return e.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := e.requireFeeAccount(ctx, req.FeeRecipient); err != nil {
			return err
		}
		return e.store.UpdateParams(ctx, req.Key, Params{
			FeeSend:      req.FeeSend,
			FeeFulfill:   req.FeeFulfill,
			LimitSend:    req.LimitSend,
			FeeRecipient: req.FeeRecipient,
			Paused:       req.Paused,
		})
	})
}

// SetChainData creates or updates the registry entry for a remote chain.
func (e *Engine) SetChainData(ctx context.Context, req SetChainDataRequest) error {
	if req.ExchangeRateFrom == 0 {
		return ErrExchangeRateZero
	}
	return e.tx.RunInTx(ctx, func(ctx context.Context) error {
		return e.store.UpsertChainData(ctx, req.Key, req.Chain, ChainData{
			Enabled:          req.Enabled,
			ExchangeRateFrom: req.ExchangeRateFrom,
		})
	})
}

// Send validates an outbound transfer, moves amount from the user into
// custody (split between custody and the fee recipient), writes the
// outbound record at the user's current nonce and advances the nonce by 1.
func (e *Engine) Send(ctx context.Context, req SendRequest) (*SendTx, error) {
	var receipt *SendTx
	var sendFee uint64
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		params, err := e.store.GetParams(ctx, req.Key)
		if err != nil {
			return err
		}
		if params.Paused {
			return ErrBridgePaused
		}
		cd, err := e.store.GetChainData(ctx, req.Key, req.ToChain)
		if err != nil {
			return err
		}
		if !cd.Enabled {
			return ErrChainDisabled
		}
		if req.Amount > params.LimitSend {
			return ErrSendLimitExceeded
		}
		rate := cd.ExchangeRateFrom
		if req.Amount%rate != 0 {
			return ErrAmountUneven
		}

		converted := req.Amount / rate
		// guarantees a strictly positive fee whenever fee_send > 0
		if converted < MaxFee {
			return ErrAmountTooLow
		}
		fee := feeAmount(converted, params.FeeSend)
		taxed := converted - fee
		sendFee = fee

		// both transfers are issued at home-chain scale and sum to exactly
		// req.Amount: no unit is created or destroyed by the fee split
		custody := e.custody(req.Key)
		if err := e.ledger.Transfer(ctx, req.User, custody, req.User, taxed*rate); err != nil {
			return err
		}
		if fee > 0 {
			if err := e.ledger.Transfer(ctx, req.User, params.FeeRecipient, req.User, fee*rate); err != nil {
				return err
			}
		}

		nonce, err := e.store.GetNonce(ctx, req.Key, req.User)
		if err != nil {
			return err
		}
		height, err := e.ledger.Height(ctx)
		if err != nil {
			return err
		}
		tx := &SendTx{
			Initiator: req.User,
			Amount:    taxed,
			To:        req.To,
			Nonce:     nonce,
			Timestamp: e.now().Unix(),
			ToChain:   req.ToChain,
			Block:     height,
		}
		if err := e.store.CreateSendTx(ctx, req.Key, req.User, tx); err != nil {
			return err
		}
		receipt = tx
		return nil
	})
	if err != nil {
		countRejection("send", err)
		return nil, err
	}

	metrics.SendsTotal.WithLabelValues(req.ToChain.String()).Inc()
	metrics.FeesCollected.WithLabelValues("send").Add(float64(sendFee))
	e.logger.Info("send completed",
		zap.String("user", req.User.Hex()),
		zap.Uint64("nonce", receipt.Nonce),
		zap.Uint64("amount", receipt.Amount),
		zap.String("to_chain", req.ToChain.String()))
	return receipt, nil
}

// Fulfill releases a transfer observed on a remote chain. The replay guard
// is created before any funds move; a pre-existing guard aborts the whole
// operation, which is the sole double-spend defense.
func (e *Engine) Fulfill(ctx context.Context, req FulfillRequest) (*FulfillReceipt, error) {
	var receipt *FulfillReceipt
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		params, err := e.store.GetParams(ctx, req.Key)
		if err != nil {
			return err
		}
		if params.Paused {
			return ErrBridgePaused
		}
		cd, err := e.store.GetChainData(ctx, req.Key, req.FromChain)
		if err != nil {
			return err
		}
		if !cd.Enabled {
			return ErrChainDisabled
		}

		// inbound direction multiplies, mirroring send's division
		hi, converted := bits.Mul64(req.Amount, cd.ExchangeRateFrom)
		if hi != 0 {
			return ErrAmountOverflow
		}
		fee := feeAmount(converted, params.FeeFulfill)
		taxed := converted - fee
		if taxed == 0 {
			return ErrAmountTooLow
		}

		if err := e.store.CreateFulfillment(ctx, req.Key, req.FromChain, req.RemoteNonce); err != nil {
			return err
		}

		custody := e.custody(req.Key)
		if err := e.ledger.CreateAccount(ctx, req.User, req.User); err != nil {
			return err
		}
		if err := e.ledger.Transfer(ctx, custody, req.User, custody, taxed); err != nil {
			return err
		}
		if fee > 0 {
			if err := e.ledger.Transfer(ctx, custody, params.FeeRecipient, custody, fee); err != nil {
				return err
			}
		}
		receipt = &FulfillReceipt{AmountTaxed: taxed, Fee: fee}
		return nil
	})
	if err != nil {
		countRejection("fulfill", err)
		return nil, err
	}

	metrics.FulfillmentsTotal.WithLabelValues(req.FromChain.String()).Inc()
	metrics.FeesCollected.WithLabelValues("fulfill").Add(float64(receipt.Fee))
	e.logger.Info("fulfill completed",
		zap.String("user", req.User.Hex()),
		zap.Uint64("remote_nonce", req.RemoteNonce),
		zap.Uint64("amount_taxed", receipt.AmountTaxed),
		zap.String("from_chain", req.FromChain.String()))
	return receipt, nil
}

// Withdraw drains the entire custody balance to an owner-designated
// destination. There is no partial withdraw.
func (e *Engine) Withdraw(ctx context.Context, req WithdrawRequest) (uint64, error) {
	custody := e.custody(req.Key)
	var amount uint64
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := e.store.GetParams(ctx, req.Key); err != nil {
			return err
		}
		balance, err := e.ledger.Balance(ctx, custody)
		if err != nil {
			return err
		}
		if balance == 0 {
			return ErrWithdrawZero
		}
		if err := e.ledger.CreateAccount(ctx, req.To, req.To); err != nil {
			return err
		}
		if err := e.ledger.Transfer(ctx, custody, req.To, custody, balance); err != nil {
			return err
		}
		amount = balance
		return nil
	})
	if err != nil {
		countRejection("withdraw", err)
		return 0, err
	}

	metrics.CustodyBalance.WithLabelValues(req.Key.Owner.Hex(), req.Key.Token.Hex()).Set(0)
	e.logger.Info("custody withdrawn",
		zap.String("owner", req.Key.Owner.Hex()),
		zap.String("to", req.To.Hex()),
		zap.Uint64("amount", amount))
	return amount, nil
}

// Params returns the current instance parameters.
func (e *Engine) Params(ctx context.Context, key InstanceKey) (*Params, error) {
	return e.store.GetParams(ctx, key)
}

// ChainData returns the registry entry for a remote chain.
func (e *Engine) ChainData(ctx context.Context, key InstanceKey, chain Bytes32) (*ChainData, error) {
	return e.store.GetChainData(ctx, key, chain)
}

// Transfers lists a user's outbound transfer records.
func (e *Engine) Transfers(ctx context.Context, key InstanceKey, user Address) ([]*SendTx, error) {
	return e.store.ListSendTxs(ctx, key, user)
}

// Nonce returns a user's next send nonce.
func (e *Engine) Nonce(ctx context.Context, key InstanceKey, user Address) (uint64, error) {
	return e.store.GetNonce(ctx, key, user)
}

// CustodyBalance reports the custody account balance for an instance.
func (e *Engine) CustodyBalance(ctx context.Context, key InstanceKey) (uint64, error) {
	balance, err := e.ledger.Balance(ctx, e.custody(key))
	if err != nil {
		return 0, err
	}
	metrics.CustodyBalance.WithLabelValues(key.Owner.Hex(), key.Token.Hex()).Set(float64(balance))
	return balance, nil
}

func validateFees(feeSend, feeFulfill uint16) error {
	if feeSend >= MaxFee {
		return ErrSendFeeTooHigh
	}
	if feeFulfill >= MaxFee {
		return ErrFulfillFeeTooHigh
	}
	return nil
}

func (e *Engine) requireFeeAccount(ctx context.Context, addr Address) error {
	ok, err := e.ledger.Exists(ctx, addr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFeeAccountNotFound
	}
	return nil
}

func countRejection(op string, err error) {
	if bridgeErr, ok := err.(*Error); ok {
		metrics.RejectionsTotal.WithLabelValues(op, bridgeErr.Code()).Inc()
	}
}
