package events

import (
	"math/big"

	"checkinchain/crypto"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatAddress(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.BelPrefix, addr[:]).String()
}

func boolToString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
