package events

import (
	"math/big"
	"strconv"
)

// FormatAmount renders an amount attribute, treating nil as zero.
func FormatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

// FormatID renders a numeric identifier attribute.
func FormatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
