package params

import (
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

type Market struct {
	// Owner may read and cancel any order; Manager is the pool identity
	// allowed to place, expire, revert and claim.
	Owner   common.Address
	Manager common.Address

	// SecurityToken and CurrencyToken define the traded pair.
	SecurityToken common.Address
	CurrencyToken common.Address

	// MinOrderSize rejects dust orders, as a decimal string in security
	// units. Empty or "0" disables.
	MinOrderSize string

	// PriceBandBps bounds execution prices around the last traded price,
	// in basis points. 0 disables.
	PriceBandBps uint64
}

type Node struct {
	DataDir string // pebble database directory
	APIAddr string // REST/WebSocket listen address
	LogFile string // empty = console only
}

type Config struct {
	Market Market
	Node   Node
}

func Default() Config {
	return Config{
		Market: Market{
			Owner:         common.HexToAddress("0x0000000000000000000000000000000000000001"),
			Manager:       common.HexToAddress("0x0000000000000000000000000000000000000001"),
			SecurityToken: common.HexToAddress("0x0000000000000000000000000000000000001001"),
			CurrencyToken: common.HexToAddress("0x0000000000000000000000000000000000001002"),
			MinOrderSize:  "0",
			PriceBandBps:  0,
		},
		Node: Node{
			DataDir: "data/book",
			APIAddr: ":8080",
			LogFile: "",
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("BOOK_OWNER"); common.IsHexAddress(v) {
		cfg.Market.Owner = common.HexToAddress(v)
	}
	if v := os.Getenv("BOOK_MANAGER"); common.IsHexAddress(v) {
		cfg.Market.Manager = common.HexToAddress(v)
	}
	if v := os.Getenv("SECURITY_TOKEN"); common.IsHexAddress(v) {
		cfg.Market.SecurityToken = common.HexToAddress(v)
	}
	if v := os.Getenv("CURRENCY_TOKEN"); common.IsHexAddress(v) {
		cfg.Market.CurrencyToken = common.HexToAddress(v)
	}
	if v := os.Getenv("MIN_ORDER_SIZE"); v != "" {
		cfg.Market.MinOrderSize = v
	}
	if v := os.Getenv("PRICE_BAND_BPS"); v != "" {
		if bps, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Market.PriceBandBps = bps
		}
	}

	cfg.Node.DataDir = getEnv("DATA_DIR", cfg.Node.DataDir)
	cfg.Node.APIAddr = getEnv("API_ADDR", cfg.Node.APIAddr)
	cfg.Node.LogFile = getEnv("LOG_FILE", cfg.Node.LogFile)

	return cfg
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
