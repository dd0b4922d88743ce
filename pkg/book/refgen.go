package book

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/verifiedmkt/poolbook/pkg/util"
)

// RefGen produces unique order references from trader, timestamp and a
// monotonic nonce. The nonce bump keeps references unique even when several
// orders land in the same instant; it is engine-owned state, not a global.
type RefGen struct {
	clock util.Clock
	nonce uint64
}

func NewRefGen(clock util.Clock) *RefGen {
	return &RefGen{clock: clock}
}

// Next returns the reference for trader's next order.
func (g *RefGen) Next(trader common.Address) common.Hash {
	g.nonce++
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(g.clock.Now().UnixNano()))
	binary.BigEndian.PutUint64(buf[8:], g.nonce)
	return crypto.Keccak256Hash(trader.Bytes(), buf[:])
}
