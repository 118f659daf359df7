package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
)

const serviceName = "BridgeService"

// logService wraps Service with automatic logging of all mutating calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the bridge Service.
// It logs method entry/exit, duration and errors. Read methods pass
// through unlogged.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) logCall(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

func (ls *logService) Initialize(ctx context.Context, req *bridge.InitializeRequest) (custody bridge.Address, err error) {
	start := time.Now()
	defer func() {
		ls.logCall("Initialize", start, err,
			zap.Uint16("fee_send", req.FeeSend),
			zap.Uint16("fee_fulfill", req.FeeFulfill),
			zap.Uint64("limit_send", req.LimitSend),
			zap.Stringer("custody", custody),
		)
	}()
	return ls.svc.Initialize(ctx, req)
}

func (ls *logService) SetParams(ctx context.Context, req *bridge.SetParamsRequest) (err error) {
	start := time.Now()
	defer func() {
		ls.logCall("SetParams", start, err,
			zap.Uint16("fee_send", req.FeeSend),
			zap.Uint16("fee_fulfill", req.FeeFulfill),
			zap.Uint64("limit_send", req.LimitSend),
			zap.Bool("paused", req.Paused),
		)
	}()
	return ls.svc.SetParams(ctx, req)
}

func (ls *logService) SetChainData(ctx context.Context, req *bridge.SetChainDataRequest) (err error) {
	start := time.Now()
	defer func() {
		ls.logCall("SetChainData", start, err,
			zap.Stringer("chain", req.Chain),
			zap.Bool("enabled", req.Enabled),
			zap.Uint64("exchange_rate_from", req.ExchangeRateFrom),
		)
	}()
	return ls.svc.SetChainData(ctx, req)
}

func (ls *logService) Send(ctx context.Context, req *bridge.SendRequest) (tx *bridge.SendTx, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{
			zap.Stringer("user", req.User),
			zap.Uint64("amount", req.Amount),
			zap.Stringer("to_chain", req.ToChain),
		}
		if tx != nil {
			fields = append(fields, zap.Uint64("nonce", tx.Nonce))
		}
		ls.logCall("Send", start, err, fields...)
	}()
	return ls.svc.Send(ctx, req)
}

func (ls *logService) Fulfill(ctx context.Context, req *bridge.FulfillRequest) (receipt *bridge.FulfillReceipt, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{
			zap.Stringer("user", req.User),
			zap.Uint64("amount", req.Amount),
			zap.Uint64("remote_nonce", req.RemoteNonce),
			zap.Stringer("from_chain", req.FromChain),
		}
		if receipt != nil {
			fields = append(fields,
				zap.Uint64("amount_taxed", receipt.AmountTaxed),
				zap.Uint64("fee", receipt.Fee),
			)
		}
		ls.logCall("Fulfill", start, err, fields...)
	}()
	return ls.svc.Fulfill(ctx, req)
}

func (ls *logService) Withdraw(ctx context.Context, req *bridge.WithdrawRequest) (amount uint64, err error) {
	start := time.Now()
	defer func() {
		ls.logCall("Withdraw", start, err,
			zap.Stringer("to", req.To),
			zap.Uint64("amount", amount),
		)
	}()
	return ls.svc.Withdraw(ctx, req)
}

func (ls *logService) Params(ctx context.Context) (*bridge.Params, error) {
	return ls.svc.Params(ctx)
}

func (ls *logService) ChainData(ctx context.Context, chain bridge.Bytes32) (*bridge.ChainData, error) {
	return ls.svc.ChainData(ctx, chain)
}

func (ls *logService) Transfers(ctx context.Context, user bridge.Address) ([]*bridge.SendTx, error) {
	return ls.svc.Transfers(ctx, user)
}

func (ls *logService) CustodyBalance(ctx context.Context) (uint64, error) {
	return ls.svc.CustodyBalance(ctx)
}
