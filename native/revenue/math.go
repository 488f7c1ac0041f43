package revenue

import "math/big"

var percentBase = big.NewInt(PercentBase)

func validShares(creatorShare, hostShare uint64) bool {
	if creatorShare > PercentBase || hostShare > PercentBase {
		return false
	}
	return creatorShare+hostShare == PercentBase
}

// splitAmount divides a non-negative amount by percentage. The host part is
// the remainder so that both parts always add up to amount exactly.
func splitAmount(amount *big.Int, creatorShare uint64) (creatorAmount, hostAmount *big.Int) {
	creatorAmount = new(big.Int).Mul(amount, new(big.Int).SetUint64(creatorShare))
	creatorAmount = creatorAmount.Quo(creatorAmount, percentBase)
	hostAmount = new(big.Int).Sub(amount, creatorAmount)
	return creatorAmount, hostAmount
}
