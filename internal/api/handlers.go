package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/revokeme/approval-scanner/internal/scancore"
)

type scanRequest struct {
	Address string `json:"address"`
	ChainID int    `json:"chain_id"`
}

type approvalEntry struct {
	Token        tokenDTO   `json:"token"`
	Spender      spenderDTO `json:"spender"`
	ApprovalType string     `json:"approval_type"`
	Allowance    string     `json:"allowance"`
	AllowanceRaw *string    `json:"allowance_raw"`
	IsUnlimited  bool       `json:"is_unlimited"`
	BlockNumber  uint64     `json:"block_number"`
	AgeDays      int        `json:"age_days"`
	TxHash       string     `json:"tx_hash"`
	RiskScore    int        `json:"risk_score"`
	Category     string     `json:"category"`
	RiskReasons  []string   `json:"risk_reasons"`
	RevokeURL    string     `json:"revoke_url"`
	EtherscanURL string     `json:"etherscan_url"`
}

type tokenDTO struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	Type     string `json:"type"`
}

type spenderDTO struct {
	Address    string `json:"address"`
	IsContract bool   `json:"is_contract"`
	Name       string `json:"name"`
	Verified   bool   `json:"verified"`
}

type scanResponse struct {
	Wallet       string         `json:"wallet"`
	ChainID      int            `json:"chain_id"`
	HygieneScore int            `json:"hygiene_score"`
	HygieneLabel string         `json:"hygiene_label"`
	Summary      summaryDTO     `json:"summary"`
	Approvals    approvalsBlock `json:"approvals"`
}

type summaryDTO struct {
	TotalApprovals int `json:"total_approvals"`
	Dangerous      int `json:"dangerous"`
	Risky          int `json:"risky"`
	Safe           int `json:"safe"`
}

type approvalsBlock struct {
	Dangerous []approvalEntry `json:"dangerous"`
	Risky     []approvalEntry `json:"risky"`
	Safe      []approvalEntry `json:"safe"`
}

func toEntry(c scancore.CategorizedApproval) approvalEntry {
	a := c.Approval
	token := tokenDTO{
		Address:  a.Token.Address,
		Symbol:   a.Token.Symbol,
		Name:     a.Token.Name,
		Decimals: a.Token.Decimals,
		Type:     a.Token.Type,
	}
	if token.Symbol == "" {
		token.Symbol = "Unknown"
	}
	if token.Name == "" {
		token.Name = "Unknown Token"
	}

	var raw *string
	if a.AllowanceRaw != nil {
		s := a.AllowanceRaw.String()
		raw = &s
	}
	return approvalEntry{
		Token: token,
		Spender: spenderDTO{
			Address:    a.Spender.Address,
			IsContract: a.Spender.IsContract,
			Name:       a.Spender.DisplayName(),
			Verified:   a.Spender.Verified,
		},
		ApprovalType: string(a.Kind),
		Allowance:    a.Allowance,
		AllowanceRaw: raw,
		IsUnlimited:  a.IsUnlimited,
		BlockNumber:  a.BlockNumber,
		AgeDays:      a.AgeDays,
		TxHash:       a.TxHash,
		RiskScore:    c.Risk.Score,
		Category:     string(c.Risk.Category),
		RiskReasons:  c.Risk.Reasons,
		RevokeURL:    c.RevokeURL,
		EtherscanURL: c.ExplorerURL,
	}
}

func toEntries(list []scancore.CategorizedApproval) []approvalEntry {
	out := make([]approvalEntry, 0, len(list))
	for _, c := range list {
		out = append(out, toEntry(c))
	}
	return out
}

// validateScanRequest normalizes and checks the address and chain.
// The returned message is empty when the request is valid.
func validateScanRequest(req *scanRequest) string {
	req.Address = strings.TrimSpace(req.Address)
	if req.ChainID == 0 {
		req.ChainID = 1
	}
	if !scancore.IsHexAddress(req.Address) {
		return "Invalid Ethereum address format"
	}
	if !scancore.ValidateChecksum(req.Address) {
		return "Invalid address checksum"
	}
	if _, ok := scancore.ChainByID(req.ChainID); !ok {
		return fmt.Sprintf("Chain ID %d not supported", req.ChainID)
	}
	return ""
}

func (s *Server) runScan(w http.ResponseWriter, r *http.Request) (scancore.ScanResult, bool) {
	var req scanRequest
	if !decodeBody(w, r, &req) {
		return scancore.ScanResult{}, false
	}
	if msg := validateScanRequest(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return scancore.ScanResult{}, false
	}

	address := scancore.NormalizeAddress(req.Address)
	approvals, err := s.scanner.Scan(r.Context(), address)
	if err != nil {
		s.logger.Error().Err(err).Str("wallet", address).Msg("scan failed")
		writeError(w, http.StatusInternalServerError, "Scan failed: "+err.Error())
		return scancore.ScanResult{}, false
	}
	return scancore.BuildReport(address, approvals, req.ChainID), true
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	result, ok := s.runScan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{
		Wallet:       result.Wallet,
		ChainID:      result.ChainID,
		HygieneScore: result.Summary.HygieneScore,
		HygieneLabel: result.Summary.HygieneLabel,
		Summary: summaryDTO{
			TotalApprovals: result.Summary.TotalApprovals,
			Dangerous:      result.Summary.DangerousCount,
			Risky:          result.Summary.RiskyCount,
			Safe:           result.Summary.SafeCount,
		},
		Approvals: approvalsBlock{
			Dangerous: toEntries(result.Dangerous),
			Risky:     toEntries(result.Risky),
			Safe:      toEntries(result.Safe),
		},
	})
}

func (s *Server) handleShareCard(w http.ResponseWriter, r *http.Request) {
	result, ok := s.runScan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, scancore.BuildShareCard(result))
}

type validateRequest struct {
	Address string `json:"address"`
}

type validateResponse struct {
	Valid    bool   `json:"valid"`
	Checksum string `json:"checksum,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	addr := strings.TrimSpace(req.Address)
	if !scancore.IsHexAddress(addr) {
		writeJSON(w, http.StatusOK, validateResponse{
			Error: "Invalid address format. Must be 0x followed by 40 hex characters.",
		})
		return
	}
	if !scancore.ValidateChecksum(addr) {
		writeJSON(w, http.StatusOK, validateResponse{
			Error: "Invalid checksum. Address may be mistyped.",
		})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:    true,
		Checksum: scancore.ToChecksumAddress(addr),
	})
}

type validateChainRequest struct {
	ChainID int `json:"chain_id"`
}

type validateChainResponse struct {
	Supported bool   `json:"supported"`
	Name      string `json:"name,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleValidateChain(w http.ResponseWriter, r *http.Request) {
	var req validateChainRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if chain, ok := scancore.ChainByID(req.ChainID); ok {
		writeJSON(w, http.StatusOK, validateChainResponse{Supported: true, Name: chain.Name})
		return
	}
	writeJSON(w, http.StatusOK, validateChainResponse{
		Error: fmt.Sprintf("Chain ID %d not supported", req.ChainID),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name":        "RevokeMe API",
		"version":     "0.1.0",
		"description": "Read-only wallet approval scanner",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
