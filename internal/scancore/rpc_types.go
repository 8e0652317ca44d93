package scancore

import (
	"encoding/json"
	"fmt"
)

type rpcReq struct {
	Jsonrpc string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

type rpcResp struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    any    `json:"data,omitempty"`
	} `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// RPCTransportError wraps network-level failures (dial, timeout, bad body).
type RPCTransportError struct {
	Err error
}

func (e *RPCTransportError) Error() string {
	return "rpc transport: " + e.Err.Error()
}

func (e *RPCTransportError) Unwrap() error { return e.Err }

// logFilter is the eth_getLogs parameter object. Topics are positional;
// a nil entry matches anything at that position.
type logFilter struct {
	FromBlock string   `json:"fromBlock"`
	ToBlock   string   `json:"toBlock"`
	Topics    []any    `json:"topics"`
	Address   []string `json:"address,omitempty"`
}

// callMsg is the eth_call parameter object (read-only, no from needed).
type callMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// RawLog mirrors the wire shape of an eth_getLogs entry. All numeric
// fields arrive as hex strings and are parsed defensively downstream.
type RawLog struct {
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	BlockNumber string   `json:"blockNumber"`
	LogIndex    string   `json:"logIndex"`
	TxHash      string   `json:"transactionHash"`
}
