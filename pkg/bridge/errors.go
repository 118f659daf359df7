package bridge

// Error is a validation rejection raised by the engine. Every trigger
// condition has its own value; callers can rely on errors.Is against these
// sentinels and on Code for stable machine-readable identifiers.
type Error struct {
	code    string
	message string
}

func (e *Error) Error() string { return e.message }

// Code returns the stable identifier for the error condition.
func (e *Error) Code() string { return e.code }

var (
	// ErrSendFeeTooHigh is returned when a configured send fee is >= 100%.
	ErrSendFeeTooHigh = &Error{"SEND_FEE_TOO_HIGH", "send fee must be below 10000 basis points"}
	// ErrFulfillFeeTooHigh is returned when a configured fulfill fee is >= 100%.
	ErrFulfillFeeTooHigh = &Error{"FULFILL_FEE_TOO_HIGH", "fulfill fee must be below 10000 basis points"}
	// ErrExchangeRateZero rejects a chain registration with a zero rate.
	ErrExchangeRateZero = &Error{"EXCHANGE_RATE_ZERO", "exchange rate must be greater than zero"}
	// ErrBridgePaused rejects send/fulfill while the instance is paused.
	ErrBridgePaused = &Error{"BRIDGE_PAUSED", "bridge instance is paused"}
	// ErrChainDisabled rejects traffic to/from a disabled chain entry.
	ErrChainDisabled = &Error{"CHAIN_DISABLED", "chain is not enabled for bridging"}
	// ErrChainNotFound is returned when no registry entry exists for a chain.
	ErrChainNotFound = &Error{"CHAIN_NOT_FOUND", "chain is not registered"}
	// ErrSendLimitExceeded rejects a send above the per-tx limit.
	ErrSendLimitExceeded = &Error{"SEND_LIMIT_EXCEEDED", "amount exceeds the per-transaction send limit"}
	// ErrAmountUneven rejects a send amount not divisible by the exchange
	// rate, preventing a fractional remainder from being silently lost.
	ErrAmountUneven = &Error{"AMOUNT_UNEVEN", "amount is not divisible by the exchange rate"}
	// ErrAmountTooLow rejects amounts too small to carry a non-zero fee, and
	// fulfillments whose post-fee amount is zero.
	ErrAmountTooLow = &Error{"AMOUNT_TOO_LOW", "amount is too low"}
	// ErrAmountOverflow rejects an inbound amount whose conversion to home
	// units does not fit in 64 bits.
	ErrAmountOverflow = &Error{"AMOUNT_OVERFLOW", "converted amount overflows 64 bits"}
	// ErrWithdrawZero rejects a withdraw when the custody balance is zero.
	ErrWithdrawZero = &Error{"WITHDRAW_ZERO", "custody balance is zero"}
	// ErrDuplicateFulfillment is the double-spend guard: a fulfillment for
	// the same (instance, from-chain, remote-nonce) already exists.
	ErrDuplicateFulfillment = &Error{"DUPLICATE_FULFILLMENT", "transfer has already been fulfilled"}
	// ErrInstanceExists rejects initializing an instance twice.
	ErrInstanceExists = &Error{"INSTANCE_EXISTS", "bridge instance already initialized"}
	// ErrInstanceNotFound is returned when no params record exists for the
	// instance key.
	ErrInstanceNotFound = &Error{"INSTANCE_NOT_FOUND", "bridge instance not initialized"}
	// ErrFeeAccountNotFound is returned when the fee recipient does not hold
	// an account for the bridged token.
	ErrFeeAccountNotFound = &Error{"FEE_ACCOUNT_NOT_FOUND", "fee recipient has no token account"}
	// ErrNonceMismatch is returned when a send record is created at a nonce
	// that no longer matches the user's sequencer.
	ErrNonceMismatch = &Error{"NONCE_MISMATCH", "send nonce does not match sequencer"}
)
