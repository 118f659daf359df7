// Package service exposes the bridge engine as an HTTP-facing service
// bound to a single bridge instance.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "github.com/chainsafe/solana-bridge-middleware/pkg/app/errors"
	"github.com/chainsafe/solana-bridge-middleware/pkg/auth"
	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
	"github.com/chainsafe/solana-bridge-middleware/pkg/ledger"
)

// ErrCallerMismatch is returned when the authenticated caller is not
// allowed to act on the requested account.
var ErrCallerMismatch = errors.New("caller not authorized for this operation")

// Service defines the business logic surface of a single bridge instance.
// Instance identity (owner, token, version, home chain) is fixed at
// construction, so request payloads carry only per-call data.
type Service interface {
	Initialize(ctx context.Context, req *bridge.InitializeRequest) (bridge.Address, error)
	SetParams(ctx context.Context, req *bridge.SetParamsRequest) error
	SetChainData(ctx context.Context, req *bridge.SetChainDataRequest) error
	Send(ctx context.Context, req *bridge.SendRequest) (*bridge.SendTx, error)
	Fulfill(ctx context.Context, req *bridge.FulfillRequest) (*bridge.FulfillReceipt, error)
	Withdraw(ctx context.Context, req *bridge.WithdrawRequest) (uint64, error)
	Params(ctx context.Context) (*bridge.Params, error)
	ChainData(ctx context.Context, chain bridge.Bytes32) (*bridge.ChainData, error)
	Transfers(ctx context.Context, user bridge.Address) ([]*bridge.SendTx, error)
	CustodyBalance(ctx context.Context) (uint64, error)
}

type bridgeService struct {
	engine *bridge.Engine
	key    bridge.InstanceKey
	logger *zap.Logger
}

// NewService creates a bridge service bound to the given instance key.
func NewService(engine *bridge.Engine, key bridge.InstanceKey, logger *zap.Logger) Service {
	return &bridgeService{
		engine: engine,
		key:    key,
		logger: logger,
	}
}

func (s *bridgeService) Initialize(ctx context.Context, req *bridge.InitializeRequest) (bridge.Address, error) {
	if err := s.requireCaller(ctx, s.key.Owner); err != nil {
		return bridge.Address{}, err
	}
	req.Key = s.key
	custody, err := s.engine.Initialize(ctx, *req)
	if err != nil {
		return bridge.Address{}, asServiceError(err)
	}
	return custody, nil
}

func (s *bridgeService) SetParams(ctx context.Context, req *bridge.SetParamsRequest) error {
	if err := s.requireCaller(ctx, s.key.Owner); err != nil {
		return err
	}
	req.Key = s.key
	if err := s.engine.SetParams(ctx, *req); err != nil {
		return asServiceError(err)
	}
	return nil
}

func (s *bridgeService) SetChainData(ctx context.Context, req *bridge.SetChainDataRequest) error {
	if err := s.requireCaller(ctx, s.key.Owner); err != nil {
		return err
	}
	req.Key = s.key
	if err := s.engine.SetChainData(ctx, *req); err != nil {
		return asServiceError(err)
	}
	return nil
}

func (s *bridgeService) Send(ctx context.Context, req *bridge.SendRequest) (*bridge.SendTx, error) {
	if err := s.requireCaller(ctx, req.User); err != nil {
		return nil, err
	}
	req.Key = s.key
	tx, err := s.engine.Send(ctx, *req)
	if err != nil {
		return nil, asServiceError(err)
	}
	return tx, nil
}

func (s *bridgeService) Fulfill(ctx context.Context, req *bridge.FulfillRequest) (*bridge.FulfillReceipt, error) {
	if err := s.requireCaller(ctx, s.key.Owner); err != nil {
		return nil, err
	}
	req.Key = s.key
	receipt, err := s.engine.Fulfill(ctx, *req)
	if err != nil {
		return nil, asServiceError(err)
	}
	return receipt, nil
}

func (s *bridgeService) Withdraw(ctx context.Context, req *bridge.WithdrawRequest) (uint64, error) {
	if err := s.requireCaller(ctx, s.key.Owner); err != nil {
		return 0, err
	}
	req.Key = s.key
	amount, err := s.engine.Withdraw(ctx, *req)
	if err != nil {
		return 0, asServiceError(err)
	}
	return amount, nil
}

func (s *bridgeService) Params(ctx context.Context) (*bridge.Params, error) {
	params, err := s.engine.Params(ctx, s.key)
	if err != nil {
		return nil, asServiceError(err)
	}
	return params, nil
}

func (s *bridgeService) ChainData(ctx context.Context, chain bridge.Bytes32) (*bridge.ChainData, error) {
	cd, err := s.engine.ChainData(ctx, s.key, chain)
	if err != nil {
		return nil, asServiceError(err)
	}
	return cd, nil
}

func (s *bridgeService) Transfers(ctx context.Context, user bridge.Address) ([]*bridge.SendTx, error) {
	txs, err := s.engine.Transfers(ctx, s.key, user)
	if err != nil {
		return nil, asServiceError(err)
	}
	return txs, nil
}

func (s *bridgeService) CustodyBalance(ctx context.Context) (uint64, error) {
	balance, err := s.engine.CustodyBalance(ctx, s.key)
	if err != nil {
		return 0, asServiceError(err)
	}
	return balance, nil
}

// requireCaller enforces that the authenticated caller, when present,
// matches the expected account. Requests without an authenticated caller
// pass through, which happens when JWKS validation is not configured.
func (s *bridgeService) requireCaller(ctx context.Context, want bridge.Address) error {
	caller, ok := auth.CallerFromContext(ctx)
	if !ok {
		return nil
	}
	if caller != want {
		return apperrors.ForbiddenError(ErrCallerMismatch, "caller not authorized")
	}
	return nil
}

// asServiceError translates engine and ledger errors into categorized
// service errors so the HTTP layer maps them onto status codes. The
// original error stays wrapped, keeping its machine-readable code
// visible to the response writer.
func asServiceError(err error) error {
	var bridgeErr *bridge.Error
	if errors.As(err, &bridgeErr) {
		switch bridgeErr {
		case bridge.ErrInstanceNotFound, bridge.ErrChainNotFound, bridge.ErrFeeAccountNotFound:
			return apperrors.ResourceNotFoundError(err, bridgeErr.Error())
		case bridge.ErrInstanceExists, bridge.ErrDuplicateFulfillment, bridge.ErrNonceMismatch:
			return apperrors.ConflictError(err, bridgeErr.Error())
		case bridge.ErrBridgePaused, bridge.ErrChainDisabled:
			return apperrors.LockedError(err, bridgeErr.Error())
		default:
			return apperrors.BadRequestError(err, bridgeErr.Error())
		}
	}

	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		return apperrors.ResourceNotFoundError(err, "token account not found")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return apperrors.BadRequestError(err, "insufficient funds")
	case errors.Is(err, ledger.ErrUnauthorized):
		return apperrors.ForbiddenError(err, "transfer not authorized")
	}

	return apperrors.GeneralError(err)
}
