package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/revokeme/approval-scanner/internal/config"
	"github.com/revokeme/approval-scanner/internal/scancore"
)

func main() {
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	chainID := flag.Int("chain", 1, "chain id for explorer/revoke links")
	verbose := flag.Bool("v", false, "log RPC activity")
	flag.Parse()

	if flag.NArg() != 1 {
		die("usage: scancli [-chain id] [-v] <address>")
	}
	address := strings.TrimSpace(flag.Arg(0))
	if !scancore.IsHexAddress(address) {
		die("invalid address: must be 0x followed by 40 hex characters")
	}
	if !scancore.ValidateChecksum(address) {
		die("invalid address: checksum mismatch")
	}
	if _, ok := scancore.ChainByID(*chainID); !ok {
		die(fmt.Sprintf("unsupported chain id %d", *chainID))
	}

	cfg := config.Load()

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	fmt.Println("=== CONFIG (.env) ===")
	fmt.Println("ETH_RPC_URL       :", cfg.EthRPCURL)
	fmt.Println("CHAIN_ID          :", *chainID)
	fmt.Println("ETHERSCAN_API_KEY :", maskKey(cfg.EtherscanAPIKey))
	fmt.Println("Concurrency       :", cfg.ScanConcurrency)
	fmt.Println("Block window      :", cfg.ScanBlockWindow)
	fmt.Println("=====================")

	gw := scancore.NewGateway(cfg.EthRPCURL)
	classifier := scancore.NewSpenderClassifier(cfg.EtherscanAPIKey)
	scanner := scancore.NewScanner(gw, classifier, cfg.ScanConcurrency, cfg.ScanBlockWindow, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	owner := scancore.NormalizeAddress(address)
	fmt.Printf("\nScanning %s ...\n", scancore.ToChecksumAddress(owner))

	approvals, err := scanner.Scan(ctx, owner)
	if err != nil {
		die("scan failed: " + err.Error())
	}
	result := scancore.BuildReport(owner, approvals, *chainID)

	s := result.Summary
	fmt.Printf("\nHygiene: %d/100 (%s) | %d approval(s): %d dangerous, %d risky, %d safe\n",
		s.HygieneScore, s.HygieneLabel, s.TotalApprovals, s.DangerousCount, s.RiskyCount, s.SafeCount)

	printBucket("DANGEROUS", result.Dangerous)
	printBucket("RISKY", result.Risky)
	printBucket("SAFE", result.Safe)

	if s.TotalApprovals > 0 {
		fmt.Printf("\nRevoke at: https://revoke.cash/address/%s?chainId=%d\n", owner, *chainID)
	}
}

func printBucket(title string, list []scancore.CategorizedApproval) {
	if len(list) == 0 {
		return
	}
	fmt.Printf("\n--- %s (%d) ---\n", title, len(list))
	for _, c := range list {
		a := c.Approval
		symbol := a.Token.Symbol
		if symbol == "" {
			symbol = scancore.ShortAddress(a.Token.Address)
		}
		fmt.Printf("  [%3d] %-12s %-10s -> %s (%s)\n",
			c.Risk.Score, symbol, a.Allowance, a.Spender.DisplayName(), scancore.ShortAddress(a.Spender.Address))
		for _, reason := range c.Risk.Reasons {
			fmt.Println("        -", reason)
		}
	}
}

func maskKey(k string) string {
	k = strings.TrimSpace(k)
	if k == "" {
		return "(unset)"
	}
	if len(k) <= 8 {
		return "***"
	}
	return k[:4] + "…" + k[len(k)-4:]
}

func die(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
