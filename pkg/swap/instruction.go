// Package swap translates AMM swap requests into order book operations.
// The pool hands each swap an opaque payload carrying order instructions;
// this package decodes it once at the boundary into a tagged Instruction
// that the adapter dispatches. Nothing downstream re-inspects raw bytes.
package swap

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/verifiedmkt/poolbook/pkg/book"
	"github.com/verifiedmkt/poolbook/pkg/fixed"
)

// Op identifies what a swap payload asks the book to do.
type Op int

const (
	// OpNone means no payload: a plain market order against the book.
	OpNone Op = iota
	OpMarket
	OpLimit
	OpStop
	OpCancel
	OpEdit
)

func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpMarket:
		return "market"
	case OpLimit:
		return "limit"
	case OpStop:
		return "stop"
	case OpCancel:
		return "cancel"
	case OpEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Instruction is the decoded form of a swap's side-channel payload.
// Ref is set for cancel/edit; Price for limit, stop and edit.
type Instruction struct {
	Op    Op
	Ref   common.Hash
	Price fixed.Value
}

// The ABI tuple (string kind, uint256 price) used for new-order payloads.
// Cancel and edit payloads are raw fixed-width forms instead: a bare 32-byte
// order reference, or reference plus 32-byte price.
var orderArgs abi.Arguments

func init() {
	stringT, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	uint256T, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	orderArgs = abi.Arguments{{Type: stringT}, {Type: uint256T}}
}

// DecodeInstruction parses a swap payload. Malformed payloads fail closed
// with ErrUnhandledRequest; they never fall through to a default order kind.
func DecodeInstruction(data []byte) (Instruction, error) {
	switch len(data) {
	case 0:
		return Instruction{Op: OpNone}, nil
	case common.HashLength:
		return Instruction{Op: OpCancel, Ref: common.BytesToHash(data)}, nil
	case 2 * common.HashLength:
		price, err := fixed.FromBig(new(big.Int).SetBytes(data[common.HashLength:]))
		if err != nil {
			return Instruction{}, fmt.Errorf("edit price: %w", book.ErrUnhandledRequest)
		}
		return Instruction{
			Op:    OpEdit,
			Ref:   common.BytesToHash(data[:common.HashLength]),
			Price: price,
		}, nil
	}

	vals, err := orderArgs.Unpack(data)
	if err != nil {
		return Instruction{}, fmt.Errorf("decode order payload: %w", book.ErrUnhandledRequest)
	}
	kind, ok := vals[0].(string)
	if !ok {
		return Instruction{}, fmt.Errorf("order kind not a string: %w", book.ErrUnhandledRequest)
	}
	rawPrice, ok := vals[1].(*big.Int)
	if !ok {
		return Instruction{}, fmt.Errorf("order price not an integer: %w", book.ErrUnhandledRequest)
	}
	price, err := fixed.FromBig(rawPrice)
	if err != nil {
		return Instruction{}, fmt.Errorf("order price out of range: %w", book.ErrUnhandledRequest)
	}

	switch kind {
	case "Market":
		if !price.IsZero() {
			return Instruction{}, fmt.Errorf("market order with price: %w", book.ErrUnhandledRequest)
		}
		return Instruction{Op: OpMarket}, nil
	case "Limit":
		return Instruction{Op: OpLimit, Price: price}, nil
	case "Stop":
		return Instruction{Op: OpStop, Price: price}, nil
	default:
		return Instruction{}, fmt.Errorf("unknown order kind %q: %w", kind, book.ErrUnhandledRequest)
	}
}

// EncodeOrder builds the (kind, price) payload for a new order.
func EncodeOrder(kind string, price fixed.Value) ([]byte, error) {
	return orderArgs.Pack(kind, price.Big())
}

// EncodeCancel builds the bare-reference cancel payload.
func EncodeCancel(ref common.Hash) []byte {
	return ref.Bytes()
}

// EncodeEdit builds the reference+price edit payload.
func EncodeEdit(ref common.Hash, price fixed.Value) []byte {
	out := make([]byte, 0, 2*common.HashLength)
	out = append(out, ref.Bytes()...)
	return append(out, common.BigToHash(price.Big()).Bytes()...)
}
