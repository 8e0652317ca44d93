package scancore

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// ERC-20 / ERC-721 / ERC-1155 call selectors (first 4 bytes of the
// Keccak-256 of the Solidity signature).
const (
	selAllowance        = "0xdd62ed3e" // allowance(address,address)
	selIsApprovedForAll = "0xe985e9c5" // isApprovedForAll(address,address)
	selGetApproved      = "0x081812fc" // getApproved(uint256)
	selSymbol           = "0x95d89b41" // symbol()
	selName             = "0x06fdde03" // name()
	selDecimals         = "0x313ce567" // decimals()
)

const rpcCallTimeout = 30 * time.Second

// Gateway is a thin typed front over an EVM JSON-RPC endpoint. It does
// not retry; retry policy, if any, belongs to the caller.
type Gateway struct {
	url    string
	client *http.Client
	nextID atomic.Int64
}

func NewGateway(rpcURL string) *Gateway {
	return &Gateway{
		url:    rpcURL,
		client: &http.Client{Timeout: rpcCallTimeout},
	}
}

// call posts one JSON-RPC 2.0 request. Request ids are monotonic per
// gateway instance.
func (g *Gateway) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(rpcReq{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      int(g.nextID.Add(1)),
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, rpcCallTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", g.url, bytes.NewReader(body))
	if err != nil {
		return nil, &RPCTransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &RPCTransportError{Err: err}
	}
	defer resp.Body.Close()

	var out rpcResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &RPCTransportError{Err: err}
	}
	if out.Error != nil {
		return nil, &RPCError{Code: out.Error.Code, Message: out.Error.Message}
	}
	return out.Result, nil
}

// callString runs a call whose result is a JSON hex string.
func (g *Gateway) callString(ctx context.Context, method string, params interface{}) (string, error) {
	raw, err := g.call(ctx, method, params)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &RPCTransportError{Err: fmt.Errorf("decode %s result: %w", method, err)}
	}
	return s, nil
}

// ethCall issues a read-only eth_call against "latest".
func (g *Gateway) ethCall(ctx context.Context, to, data string) (string, error) {
	return g.callString(ctx, "eth_call", []any{callMsg{To: to, Data: data}, "latest"})
}

// HeadBlock returns the current block height.
func (g *Gateway) HeadBlock(ctx context.Context) (uint64, error) {
	s, err := g.callString(ctx, "eth_blockNumber", []any{})
	if err != nil {
		return 0, err
	}
	return parseHexUint(s), nil
}

// BlockTimestamp returns the timestamp of a block, or 0 when the node
// does not have it.
func (g *Gateway) BlockTimestamp(ctx context.Context, block uint64) (uint64, error) {
	raw, err := g.call(ctx, "eth_getBlockByNumber", []any{hexUint(block), false})
	if err != nil {
		return 0, err
	}
	var blk struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &blk); err != nil || blk.Timestamp == "" {
		return 0, nil
	}
	return parseHexUint(blk.Timestamp), nil
}

// GetLogs fetches logs for a positional topic filter over a block range.
func (g *Gateway) GetLogs(ctx context.Context, topics []any, fromBlock, toBlock string) ([]RawLog, error) {
	raw, err := g.call(ctx, "eth_getLogs", []any{logFilter{
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		Topics:    topics,
	}})
	if err != nil {
		return nil, err
	}
	var logs []RawLog
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, &RPCTransportError{Err: fmt.Errorf("decode logs: %w", err)}
	}
	return logs, nil
}

// GetAllowance reads the live ERC-20 allowance(owner, spender).
func (g *Gateway) GetAllowance(ctx context.Context, token, owner, spender string) (*big.Int, error) {
	data := selAllowance + padArg(owner) + padArg(spender)
	res, err := g.ethCall(ctx, token, data)
	if err != nil {
		return nil, err
	}
	if res == "" || res == "0x" {
		return new(big.Int), nil
	}
	return parseHexBig(res), nil
}

// IsApprovedForAll reads the live ERC-721/1155 operator flag.
func (g *Gateway) IsApprovedForAll(ctx context.Context, token, owner, operator string) (bool, error) {
	data := selIsApprovedForAll + padArg(owner) + padArg(operator)
	res, err := g.ethCall(ctx, token, data)
	if err != nil {
		return false, err
	}
	return parseHexBig(res).Cmp(big.NewInt(1)) == 0, nil
}

// GetApproved returns the approved address for a specific ERC-721
// tokenId, or "" when none is set.
func (g *Gateway) GetApproved(ctx context.Context, token string, tokenID *big.Int) (string, error) {
	data := selGetApproved + padHexArg(tokenID)
	res, err := g.ethCall(ctx, token, data)
	if err != nil {
		return "", err
	}
	addr := UnpadAddress(res)
	if addr == "" || addr == zeroAddress {
		return "", nil
	}
	return addr, nil
}

// GetCode returns the deployed bytecode at an address. "0x" means EOA.
func (g *Gateway) GetCode(ctx context.Context, addr string) (string, error) {
	res, err := g.callString(ctx, "eth_getCode", []any{NormalizeAddress(addr), "latest"})
	if err != nil {
		return "", err
	}
	if res == "" {
		return "0x", nil
	}
	return res, nil
}

// IsContract probes whether an address carries deployed code.
func (g *Gateway) IsContract(ctx context.Context, addr string) (bool, error) {
	code, err := g.GetCode(ctx, addr)
	if err != nil {
		return false, err
	}
	return code != "0x" && len(code) > 2, nil
}

// TokenInfo is the metadata triad read from a token contract.
type TokenInfo struct {
	Address  string
	Symbol   string
	Name     string
	Decimals int
	Type     string
}

// GetTokenInfo reads symbol/name/decimals. Each call is independently
// fault-tolerant; failures leave the default in place (decimals 18).
func (g *Gateway) GetTokenInfo(ctx context.Context, token string) TokenInfo {
	info := TokenInfo{Address: NormalizeAddress(token), Decimals: 18}

	if res, err := g.ethCall(ctx, token, selSymbol); err == nil && len(res) > 2 {
		info.Symbol = decodeABIString(res)
	}
	if res, err := g.ethCall(ctx, token, selName); err == nil && len(res) > 2 {
		info.Name = decodeABIString(res)
	}
	if res, err := g.ethCall(ctx, token, selDecimals); err == nil && res != "" && res != "0x" {
		info.Decimals = int(parseHexUint(res))
	}
	return info
}

// padArg left-pads an address to a 32-byte call argument (no 0x prefix).
func padArg(addr string) string {
	h := strings.TrimPrefix(NormalizeAddress(addr), "0x")
	return strings.Repeat("0", 64-len(h)) + h
}

// padHexArg left-pads an unsigned integer to a 32-byte call argument.
func padHexArg(v *big.Int) string {
	h := ""
	if v != nil {
		h = v.Text(16)
	}
	if len(h) > 64 {
		h = h[len(h)-64:]
	}
	return strings.Repeat("0", 64-len(h)) + h
}

func hexUint(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}

// decodeABIString decodes an eth_call result as an ABI dynamic string
// (offset word, length word, UTF-8 bytes). A short-string fallback
// attempts a direct decode for non-standard tokens that return fixed
// bytes. Trailing NULs are stripped.
func decodeABIString(res string) string {
	h := strings.TrimPrefix(res, "0x")
	if len(h) < 64 {
		return ""
	}
	if len(h) >= 128 {
		length := parseHexUint("0x" + h[64:128])
		if 128+length*2 <= uint64(len(h)) {
			if s, ok := hexToUTF8(h[128 : 128+length*2]); ok {
				return s
			}
		}
	}
	s, _ := hexToUTF8(h)
	return s
}

func hexToUTF8(h string) (string, bool) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return "", false
	}
	s := strings.TrimRight(string(b), "\x00")
	if !utf8.ValidString(s) {
		return "", false
	}
	return s, true
}
