package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/chainsafe/solana-bridge-middleware/pkg/app/errors"
	"github.com/chainsafe/solana-bridge-middleware/pkg/auth"
	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
	"github.com/chainsafe/solana-bridge-middleware/pkg/ledger"
)

func TestAsServiceErrorCategories(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperrors.Category
	}{
		{"instance not found", bridge.ErrInstanceNotFound, apperrors.CategoryResourceNotFound},
		{"chain not found", bridge.ErrChainNotFound, apperrors.CategoryResourceNotFound},
		{"fee account not found", bridge.ErrFeeAccountNotFound, apperrors.CategoryResourceNotFound},
		{"instance exists", bridge.ErrInstanceExists, apperrors.CategoryDataConflict},
		{"duplicate fulfillment", bridge.ErrDuplicateFulfillment, apperrors.CategoryDataConflict},
		{"nonce mismatch", bridge.ErrNonceMismatch, apperrors.CategoryDataConflict},
		{"paused", bridge.ErrBridgePaused, apperrors.CategoryLocked},
		{"chain disabled", bridge.ErrChainDisabled, apperrors.CategoryLocked},
		{"send fee too high", bridge.ErrSendFeeTooHigh, apperrors.CategoryDataError},
		{"amount uneven", bridge.ErrAmountUneven, apperrors.CategoryDataError},
		{"amount overflow", bridge.ErrAmountOverflow, apperrors.CategoryDataError},
		{"withdraw zero", bridge.ErrWithdrawZero, apperrors.CategoryDataError},
		{"account not found", ledger.ErrAccountNotFound, apperrors.CategoryResourceNotFound},
		{"insufficient funds", ledger.ErrInsufficientFunds, apperrors.CategoryDataError},
		{"transfer unauthorized", ledger.ErrUnauthorized, apperrors.CategoryForbidden},
		{"unknown", errors.New("disk on fire"), apperrors.CategoryGeneralError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := asServiceError(tc.err)
			require.True(t, apperrors.Is(got, tc.want), "category for %v: got %v", tc.err, got)
			// the original error must stay reachable for errors.Is checks
			require.ErrorIs(t, got, tc.err)
		})
	}
}

func TestRequireCaller(t *testing.T) {
	owner := testAddr(1)
	other := testAddr(2)
	svc := &bridgeService{key: bridge.InstanceKey{Owner: owner}}

	t.Run("no caller passes through", func(t *testing.T) {
		require.NoError(t, svc.requireCaller(context.Background(), owner))
	})

	t.Run("matching caller", func(t *testing.T) {
		ctx := auth.WithCaller(context.Background(), owner)
		require.NoError(t, svc.requireCaller(ctx, owner))
	})

	t.Run("mismatched caller is forbidden", func(t *testing.T) {
		ctx := auth.WithCaller(context.Background(), other)
		err := svc.requireCaller(ctx, owner)
		require.Error(t, err)
		require.True(t, apperrors.Is(err, apperrors.CategoryForbidden), "got %v", err)
		require.ErrorIs(t, err, ErrCallerMismatch)
	})
}
