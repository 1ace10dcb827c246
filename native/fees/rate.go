package fees

import "math/big"

// BpsDenominator is the parts-per-ten-thousand base every percentage rate in
// the platform is expressed against.
const BpsDenominator = 10_000

// CalculateRate returns amount * rateBps / 10_000 using floor division. The
// helper trusts its caller for the rate bound; configuration writes validate
// bps fields before they ever reach this function.
func CalculateRate(rateBps uint32, amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 || rateBps == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(rateBps)))
	return out.Quo(out, big.NewInt(BpsDenominator))
}
