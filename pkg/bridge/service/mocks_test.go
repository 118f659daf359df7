package service

import (
	"context"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
)

// mockService is a func-field fake of Service for HTTP handler tests.
type mockService struct {
	InitializeFunc     func(ctx context.Context, req *bridge.InitializeRequest) (bridge.Address, error)
	SetParamsFunc      func(ctx context.Context, req *bridge.SetParamsRequest) error
	SetChainDataFunc   func(ctx context.Context, req *bridge.SetChainDataRequest) error
	SendFunc           func(ctx context.Context, req *bridge.SendRequest) (*bridge.SendTx, error)
	FulfillFunc        func(ctx context.Context, req *bridge.FulfillRequest) (*bridge.FulfillReceipt, error)
	WithdrawFunc       func(ctx context.Context, req *bridge.WithdrawRequest) (uint64, error)
	ParamsFunc         func(ctx context.Context) (*bridge.Params, error)
	ChainDataFunc      func(ctx context.Context, chain bridge.Bytes32) (*bridge.ChainData, error)
	TransfersFunc      func(ctx context.Context, user bridge.Address) ([]*bridge.SendTx, error)
	CustodyBalanceFunc func(ctx context.Context) (uint64, error)
}

func (m *mockService) Initialize(ctx context.Context, req *bridge.InitializeRequest) (bridge.Address, error) {
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx, req)
	}
	return bridge.Address{}, nil
}

func (m *mockService) SetParams(ctx context.Context, req *bridge.SetParamsRequest) error {
	if m.SetParamsFunc != nil {
		return m.SetParamsFunc(ctx, req)
	}
	return nil
}

func (m *mockService) SetChainData(ctx context.Context, req *bridge.SetChainDataRequest) error {
	if m.SetChainDataFunc != nil {
		return m.SetChainDataFunc(ctx, req)
	}
	return nil
}

func (m *mockService) Send(ctx context.Context, req *bridge.SendRequest) (*bridge.SendTx, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockService) Fulfill(ctx context.Context, req *bridge.FulfillRequest) (*bridge.FulfillReceipt, error) {
	if m.FulfillFunc != nil {
		return m.FulfillFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockService) Withdraw(ctx context.Context, req *bridge.WithdrawRequest) (uint64, error) {
	if m.WithdrawFunc != nil {
		return m.WithdrawFunc(ctx, req)
	}
	return 0, nil
}

func (m *mockService) Params(ctx context.Context) (*bridge.Params, error) {
	if m.ParamsFunc != nil {
		return m.ParamsFunc(ctx)
	}
	return nil, nil
}

func (m *mockService) ChainData(ctx context.Context, chain bridge.Bytes32) (*bridge.ChainData, error) {
	if m.ChainDataFunc != nil {
		return m.ChainDataFunc(ctx, chain)
	}
	return nil, nil
}

func (m *mockService) Transfers(ctx context.Context, user bridge.Address) ([]*bridge.SendTx, error) {
	if m.TransfersFunc != nil {
		return m.TransfersFunc(ctx, user)
	}
	return nil, nil
}

func (m *mockService) CustodyBalance(ctx context.Context) (uint64, error) {
	if m.CustodyBalanceFunc != nil {
		return m.CustodyBalanceFunc(ctx)
	}
	return 0, nil
}
