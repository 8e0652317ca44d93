package config

import (
	"os"
	"strconv"
	"strings"
)

// Settings keeps all configuration options.
// Keys are read in both lower_case and UPPER_CASE forms.
type Settings struct {
	EthRPCURL       string
	EtherscanAPIKey string
	APIHost         string
	APIPort         int
	CORSOrigins     []string
	ScanConcurrency int
	ScanBlockWindow uint64
}

// Load reads settings from environment supporting both UPPER_CASE and lower_case keys.
func Load() Settings {
	get := func(keys []string, def string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				return v
			}
		}
		return def
	}
	getInt := func(keys []string, def int) int {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
		return def
	}
	getUint64 := func(keys []string, def uint64) uint64 {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64); err == nil {
			return n
		}
		return def
	}
	splitCSV := func(s string) []string {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	}

	st := Settings{}
	st.EthRPCURL = get([]string{"eth_rpc_url", "ETH_RPC_URL"}, "https://eth.llamarpc.com")
	st.EtherscanAPIKey = get([]string{"etherscan_api_key", "ETHERSCAN_API_KEY"}, "")
	st.APIHost = get([]string{"api_host", "API_HOST"}, "0.0.0.0")
	st.APIPort = getInt([]string{"api_port", "API_PORT"}, 8000)
	st.CORSOrigins = splitCSV(get([]string{"cors_origins", "CORS_ORIGINS"},
		"http://localhost:3000,http://127.0.0.1:3000,https://revokeme.vercel.app"))
	st.ScanConcurrency = getInt([]string{"scan_concurrency", "SCAN_CONCURRENCY"}, 12)
	st.ScanBlockWindow = getUint64([]string{"scan_block_window", "SCAN_BLOCK_WINDOW"}, 5_000_000)
	return st
}
