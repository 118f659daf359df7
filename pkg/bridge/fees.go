package bridge

import "math/bits"

// feeAmount returns floor(amount * rateBps / MaxFee). The 128-bit
// intermediate cannot overflow and, because rateBps < MaxFee, the high
// word of the product is always below the divisor.
func feeAmount(amount uint64, rateBps uint16) uint64 {
	hi, lo := bits.Mul64(amount, uint64(rateBps))
	q, _ := bits.Div64(hi, lo, MaxFee)
	return q
}
