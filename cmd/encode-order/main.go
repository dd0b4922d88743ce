// encode-order builds the hex instruction payloads the swap endpoint expects.
//
// Examples:
//
//	encode-order -kind Limit -price 20
//	encode-order -kind Market
//	encode-order -cancel 0x3f2a...
//	encode-order -edit 0x3f2a... -price 21.5
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/verifiedmkt/poolbook/pkg/fixed"
	"github.com/verifiedmkt/poolbook/pkg/swap"
)

func main() {
	kind := flag.String("kind", "", "order kind: Market, Limit or Stop")
	price := flag.String("price", "0", "limit/stop/edit price (decimal)")
	cancel := flag.String("cancel", "", "order reference to cancel")
	edit := flag.String("edit", "", "order reference to edit (use with -price)")
	flag.Parse()

	p, err := fixed.Parse(*price)
	if err != nil {
		fail("bad price %q: %v", *price, err)
	}

	var payload []byte
	switch {
	case *cancel != "":
		payload = swap.EncodeCancel(common.HexToHash(*cancel))
	case *edit != "":
		payload = swap.EncodeEdit(common.HexToHash(*edit), p)
	case *kind != "":
		payload, err = swap.EncodeOrder(*kind, p)
		if err != nil {
			fail("encode: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	// Round-trip through the decoder so a bad flag combination fails here
	// instead of at the API.
	ins, err := swap.DecodeInstruction(payload)
	if err != nil {
		fail("payload does not decode: %v", err)
	}

	fmt.Printf("op:      %s\n", ins.Op)
	if ins.Ref != (common.Hash{}) {
		fmt.Printf("ref:     %s\n", ins.Ref.Hex())
	}
	if !ins.Price.IsZero() {
		fmt.Printf("price:   %s\n", ins.Price.String())
	}
	fmt.Printf("payload: 0x%x\n", payload)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
