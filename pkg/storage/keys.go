package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Key schema:
//
//	ord:<address>:<ref>    → Order
//	trade:<address>:<seq>  → Trade (one copy per party)
//
// Sequence numbers are zero-padded so per-trader trades iterate in
// execution order.
const (
	prefixOrder = "ord:"
	prefixTrade = "trade:"
)

// Hex address length including the 0x prefix.
const addrHexLen = 2 + 2*common.AddressLength

func orderKey(trader common.Address, ref common.Hash) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", prefixOrder, trader.Hex(), ref.Hex()))
}

func tradeKey(trader common.Address, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", prefixTrade, trader.Hex(), seq))
}

// traderFromTradeKey recovers the trader address from a trade key.
func traderFromTradeKey(key []byte) (common.Address, bool) {
	if len(key) < len(prefixTrade)+addrHexLen {
		return common.Address{}, false
	}
	hex := string(key[len(prefixTrade) : len(prefixTrade)+addrHexLen])
	if !common.IsHexAddress(hex) {
		return common.Address{}, false
	}
	return common.HexToAddress(hex), true
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
