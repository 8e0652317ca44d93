package scancore

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// fakeNode is an httptest-backed JSON-RPC endpoint with canned answers.
// Call results are looked up first by "to|data", then by "to|selector".
type fakeNode struct {
	mu         sync.Mutex
	ids        []int
	methods    []string
	headBlock  uint64
	logs       map[string][]RawLog // topic[0] -> logs
	logErrs    map[string]string   // topic[0] -> error message
	calls      map[string]string   // "to|data" or "to|selector" -> result
	callErrs   map[string]string
	callLog    []string // "to|selector" per eth_call received
	methodErrs map[string]string
	code       map[string]string // address -> bytecode
	timestamps map[uint64]uint64 // block -> timestamp
	srv        *httptest.Server
}

func newFakeNode() *fakeNode {
	n := &fakeNode{
		logs:       make(map[string][]RawLog),
		logErrs:    make(map[string]string),
		calls:      make(map[string]string),
		callErrs:   make(map[string]string),
		code:       make(map[string]string),
		timestamps: make(map[uint64]uint64),
		methodErrs: make(map[string]string),
	}
	n.srv = httptest.NewServer(http.HandlerFunc(n.handle))
	return n
}

func (n *fakeNode) URL() string { return n.srv.URL }
func (n *fakeNode) Close()      { n.srv.Close() }

func (n *fakeNode) setCall(to, data, result string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[NormalizeAddress(to)+"|"+strings.ToLower(data)] = result
}

func (n *fakeNode) seenIDs() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int{}, n.ids...)
}

func (n *fakeNode) handle(w http.ResponseWriter, r *http.Request) {
	var req rpcReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n.mu.Lock()
	n.ids = append(n.ids, req.ID)
	n.methods = append(n.methods, req.Method)
	n.mu.Unlock()

	writeResult := func(v any) {
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": v})
	}
	writeErr := func(code int, msg string) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]any{"code": code, "message": msg},
		})
	}

	params, _ := json.Marshal(req.Params)
	var rawParams []json.RawMessage
	_ = json.Unmarshal(params, &rawParams)

	n.mu.Lock()
	methodErr, hasMethodErr := n.methodErrs[req.Method]
	n.mu.Unlock()
	if hasMethodErr {
		writeErr(-32000, methodErr)
		return
	}

	switch req.Method {
	case "eth_blockNumber":
		writeResult(hexUint(n.headBlock))

	case "eth_getLogs":
		var f logFilter
		_ = json.Unmarshal(rawParams[0], &f)
		topic0, _ := f.Topics[0].(string)
		n.mu.Lock()
		errMsg, isErr := n.logErrs[topic0]
		logs := n.logs[topic0]
		n.mu.Unlock()
		if isErr {
			writeErr(-32000, errMsg)
			return
		}
		if logs == nil {
			logs = []RawLog{}
		}
		writeResult(logs)

	case "eth_call":
		var msg callMsg
		_ = json.Unmarshal(rawParams[0], &msg)
		to := NormalizeAddress(msg.To)
		data := strings.ToLower(msg.Data)
		sel := data
		if len(sel) > 10 {
			sel = sel[:10]
		}
		n.mu.Lock()
		n.callLog = append(n.callLog, to+"|"+sel)
		if m, ok := n.callErrs[to+"|"+data]; ok {
			n.mu.Unlock()
			writeErr(-32000, m)
			return
		}
		if m, ok := n.callErrs[to+"|"+sel]; ok {
			n.mu.Unlock()
			writeErr(-32000, m)
			return
		}
		res, ok := n.calls[to+"|"+data]
		if !ok {
			res, ok = n.calls[to+"|"+sel]
		}
		n.mu.Unlock()
		if !ok {
			res = "0x"
		}
		writeResult(res)

	case "eth_getCode":
		var addr string
		_ = json.Unmarshal(rawParams[0], &addr)
		n.mu.Lock()
		res := n.code[NormalizeAddress(addr)]
		n.mu.Unlock()
		if res == "" {
			res = "0x"
		}
		writeResult(res)

	case "eth_getBlockByNumber":
		var blockHex string
		_ = json.Unmarshal(rawParams[0], &blockHex)
		n.mu.Lock()
		ts, ok := n.timestamps[parseHexUint(blockHex)]
		n.mu.Unlock()
		if !ok {
			writeResult(nil)
			return
		}
		writeResult(map[string]string{"number": blockHex, "timestamp": hexUint(ts)})

	default:
		writeErr(-32601, "method not found")
	}
}

// abiString ABI-encodes a dynamic string return value.
func abiString(s string) string {
	enc := word(0x20)[2:] + word(int64(len(s)))[2:]
	data := hex.EncodeToString([]byte(s))
	pad := (64 - len(data)%64) % 64
	return "0x" + enc + data + strings.Repeat("0", pad)
}
