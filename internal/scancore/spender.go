package scancore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// knownSpenders maps well-known protocol contracts to display names.
// Hits are treated as verified with source available. Read-only.
var knownSpenders = map[string]string{
	// Uniswap
	"0x68b3465833fb72a70ecdf485e0e4c7bd8665fc45": "Uniswap: Universal Router",
	"0xef1c6e67703c7bd7107eed8303fbe6ec2554bf6b": "Uniswap: Universal Router 2",
	"0x3fc91a3afd70395cd496c647d5a6cc9d4b2b7fad": "Uniswap: Universal Router 3",
	"0x7a250d5630b4cf539739df2c5dacb4c659f2488d": "Uniswap V2: Router 2",
	"0xe592427a0aece92de3edee1f18e0157c05861564": "Uniswap V3: Router",
	"0x000000000022d473030f116ddee9f6b43ac78ba3": "Uniswap: Permit2",

	// OpenSea
	"0x1e0049783f008a0085193e00003d00cd54003c71": "OpenSea: Seaport 1.4",
	"0x00000000000001ad428e4906ae43d8f9852d0dd6": "OpenSea: Seaport 1.5",
	"0x00000000000000adc04c56bf30ac9d3c0aaf14dc": "OpenSea: Seaport 1.6",

	// Blur
	"0x000000000000ad05ccc4f10045630fb830b95127": "Blur: Marketplace",
	"0x29469395eaf6f95920e59f858042f0e28d98a20b": "Blur: Blend",

	// 1inch
	"0x1111111254eeb25477b68fb85ed929f73a960582": "1inch: Aggregation Router V5",
	"0x111111125421ca6dc452d289314280a0f8842a65": "1inch: Aggregation Router V6",

	// Aave
	"0x7fc66500c84a76ad7e9c93437bfc5ac33e2ddae9": "Aave: AAVE Token",
	"0x87870bca3f3fd6335c3f4ce8392d69350b4fa4e2": "Aave: Pool V3",

	// Compound
	"0xc00e94cb662c3520282e6f5717214004a7f26888": "Compound: COMP Token",
}

// SpenderInfo describes a classified spender address.
type SpenderInfo struct {
	Address         string
	IsContract      bool
	Name            string
	Verified        bool
	SourceAvailable bool
}

// DisplayName falls back to a generic label when the spender is unnamed.
func (s SpenderInfo) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.IsContract {
		return "Contract"
	}
	return "EOA"
}

// SpenderClassifier resolves spender metadata from a static allowlist and,
// when an API key is configured, a block-explorer source-code lookup.
// The allowlist is immutable; the classifier itself is stateless.
type SpenderClassifier struct {
	apiKey      string
	explorerAPI string
	client      *http.Client
}

func NewSpenderClassifier(etherscanAPIKey string) *SpenderClassifier {
	return &SpenderClassifier{
		apiKey:      etherscanAPIKey,
		explorerAPI: "https://api.etherscan.io/api",
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// KnownProtocol returns the display name of a well-known protocol
// contract, or "" when the address is unknown.
func KnownProtocol(addr string) string {
	return knownSpenders[NormalizeAddress(addr)]
}

// Classify resolves a spender. isContract comes from the caller's
// get_code probe; explorer failures silently fall through to an
// unverified result.
func (c *SpenderClassifier) Classify(ctx context.Context, addr string, isContract bool) SpenderInfo {
	addr = NormalizeAddress(addr)

	if name := KnownProtocol(addr); name != "" {
		return SpenderInfo{
			Address:         addr,
			IsContract:      true,
			Name:            name,
			Verified:        true,
			SourceAvailable: true,
		}
	}

	info := SpenderInfo{Address: addr, IsContract: isContract}
	if c.apiKey == "" || !isContract {
		return info
	}

	if name, ok := c.lookupSource(ctx, addr); ok && name != "" {
		info.Name = name
		info.Verified = true
		info.SourceAvailable = true
	}
	return info
}

// lookupSource queries the explorer's getsourcecode endpoint. A non-empty
// ContractName means the contract is verified.
func (c *SpenderClassifier) lookupSource(ctx context.Context, addr string) (string, bool) {
	q := url.Values{}
	q.Set("module", "contract")
	q.Set("action", "getsourcecode")
	q.Set("address", addr)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.explorerAPI+"?"+q.Encode(), nil)
	if err != nil {
		return "", false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
		Result []struct {
			ContractName string `json:"ContractName"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false
	}
	if out.Status != "1" || len(out.Result) == 0 {
		return "", false
	}
	return out.Result[0].ContractName, true
}
