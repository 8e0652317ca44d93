package scancore

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Historical scan window: roughly two years of mainnet blocks.
const DefaultBlockWindow = 5_000_000

// Post-Merge mainnet block time; used only when a block timestamp read
// fails. Chain-specific values live on the chain table.
const fallbackBlockSeconds = 12

// ActiveApproval is a log-derived approval that survived live on-chain
// verification, enriched with token and spender metadata.
type ActiveApproval struct {
	Token        TokenInfo
	Spender      SpenderInfo
	Kind         ApprovalKind
	AllowanceRaw *big.Int // nil for blanket operator approvals
	Allowance    string
	IsUnlimited  bool
	BlockNumber  uint64
	Timestamp    uint64
	AgeDays      int
	TxHash       string
}

// Scanner drives the approval pipeline: log fetch, parse, state fold,
// live verification, enrichment. One Scanner serves many scans; caches
// are created per scan.
type Scanner struct {
	gw          *Gateway
	classifier  *SpenderClassifier
	concurrency int
	blockWindow uint64
	log         zerolog.Logger
}

func NewScanner(gw *Gateway, classifier *SpenderClassifier, concurrency int, blockWindow uint64, logger zerolog.Logger) *Scanner {
	if concurrency <= 0 {
		concurrency = 12
	}
	if blockWindow == 0 {
		blockWindow = DefaultBlockWindow
	}
	return &Scanner{
		gw:          gw,
		classifier:  classifier,
		concurrency: concurrency,
		blockWindow: blockWindow,
		log:         logger,
	}
}

// scanCaches dedupes metadata reads within one scan. A second request
// for an in-flight key awaits the first instead of issuing its own RPC.
type scanCaches struct {
	flight singleflight.Group

	mu       sync.Mutex
	tokens   map[string]TokenInfo
	spenders map[string]SpenderInfo
}

// Scan returns all currently-active approvals for owner, unlimited ones
// first. RPC failures never abort the scan: a failed log family becomes
// empty and a failed per-entry verification drops that entry.
func (s *Scanner) Scan(ctx context.Context, owner string) ([]ActiveApproval, error) {
	owner = NormalizeAddress(owner)
	start := time.Now()

	head, err := s.gw.HeadBlock(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("head block unavailable, scanning from genesis")
		head = 0
	}
	fromBlock := "0x0"
	if head > s.blockWindow {
		fromBlock = hexUint(head - s.blockWindow)
	}

	approvalLogs, forAllLogs := s.fetchLogFamilies(ctx, owner, fromBlock)

	parsed := ParseApprovalLogs(approvalLogs, forAllLogs)
	state := ReconstructState(parsed)

	now := time.Now().Unix()
	caches := &scanCaches{
		tokens:   make(map[string]TokenInfo),
		spenders: make(map[string]SpenderInfo),
	}

	var (
		mu     sync.Mutex
		active []ActiveApproval
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, entry := range state {
		entry := entry
		g.Go(func() error {
			a, err := s.verifyAndEnrich(gctx, entry, owner, head, now, caches)
			if err != nil {
				s.log.Debug().Err(err).
					Str("token", entry.TokenAddress).
					Str("spender", entry.Spender).
					Msg("approval dropped")
				return nil
			}
			if a != nil {
				mu.Lock()
				active = append(active, *a)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("scan aborted: %w", ctx.Err())
	}

	// Unlimited approvals first, oldest first within each group. The
	// report assembler imposes the consumer-visible ordering later.
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].IsUnlimited != active[j].IsUnlimited {
			return active[i].IsUnlimited
		}
		return active[i].AgeDays > active[j].AgeDays
	})

	s.log.Info().
		Str("owner", owner).
		Int("logs", len(parsed)).
		Int("active", len(active)).
		Dur("elapsed", time.Since(start)).
		Msg("scan complete")
	return active, nil
}

// fetchLogFamilies runs the two topic queries in parallel. A failed
// family is logged and becomes empty.
func (s *Scanner) fetchLogFamilies(ctx context.Context, owner, fromBlock string) (approvals, forAll []RawLog) {
	padded := PadAddress(owner)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		logs, err := s.gw.GetLogs(ctx, []any{ApprovalTopic, padded}, fromBlock, "latest")
		if err != nil {
			s.log.Warn().Err(err).Msg("approval log fetch failed")
			return
		}
		approvals = logs
	}()
	go func() {
		defer wg.Done()
		logs, err := s.gw.GetLogs(ctx, []any{ApprovalForAllTopic, padded}, fromBlock, "latest")
		if err != nil {
			s.log.Warn().Err(err).Msg("approvalForAll log fetch failed")
			return
		}
		forAll = logs
	}()
	wg.Wait()
	return approvals, forAll
}

// verifyAndEnrich confirms one reconstructed entry against live chain
// state and attaches metadata. A nil, nil return means the entry was
// revoked on-chain or is out of scope.
func (s *Scanner) verifyAndEnrich(ctx context.Context, p ParsedApproval, owner string, head uint64, now int64, caches *scanCaches) (*ActiveApproval, error) {
	var (
		allowanceRaw *big.Int
		isUnlimited  bool
	)

	switch p.Kind {
	case KindERC20:
		allowance, err := s.gw.GetAllowance(ctx, p.TokenAddress, owner, p.Spender)
		if err != nil {
			return nil, err
		}
		if allowance.Sign() == 0 {
			return nil, nil
		}
		allowanceRaw = allowance
		isUnlimited = IsUnlimitedAllowance(allowance)

	case KindERC721All, KindERC1155All:
		approved, err := s.gw.IsApprovedForAll(ctx, p.TokenAddress, owner, p.Spender)
		if err != nil {
			return nil, err
		}
		if !approved {
			return nil, nil
		}
		isUnlimited = true

	default:
		// Single-token ERC-721 approvals are out of report scope: there
		// is no enumeration source to verify a tokenId set against.
		return nil, nil
	}

	token, err := s.tokenInfo(ctx, caches, p.TokenAddress, p.Kind)
	if err != nil {
		return nil, err
	}
	spender, err := s.spenderInfo(ctx, caches, p.Spender)
	if err != nil {
		return nil, err
	}

	timestamp, ageDays := s.approvalAge(ctx, p.BlockNumber, head, now)

	allowance := "All Tokens"
	if allowanceRaw != nil {
		allowance = FormatAllowance(allowanceRaw, token.Decimals)
	}

	return &ActiveApproval{
		Token:        token,
		Spender:      spender,
		Kind:         p.Kind,
		AllowanceRaw: allowanceRaw,
		Allowance:    allowance,
		IsUnlimited:  isUnlimited,
		BlockNumber:  p.BlockNumber,
		Timestamp:    timestamp,
		AgeDays:      ageDays,
		TxHash:       p.TxHash,
	}, nil
}

// approvalAge resolves the approval's age from the block timestamp,
// falling back to a block-count estimate when the read fails.
func (s *Scanner) approvalAge(ctx context.Context, block, head uint64, now int64) (timestamp uint64, ageDays int) {
	if block == 0 {
		return 0, 0
	}
	ts, err := s.gw.BlockTimestamp(ctx, block)
	if err == nil && ts > 0 && int64(ts) <= now {
		return ts, int((now - int64(ts)) / 86400)
	}
	if head > block {
		return 0, int((head - block) * fallbackBlockSeconds / 86400)
	}
	return 0, 0
}

func (s *Scanner) tokenInfo(ctx context.Context, caches *scanCaches, token string, kind ApprovalKind) (TokenInfo, error) {
	caches.mu.Lock()
	if info, ok := caches.tokens[token]; ok {
		caches.mu.Unlock()
		return info, nil
	}
	caches.mu.Unlock()

	v, err, _ := caches.flight.Do("token:"+token, func() (interface{}, error) {
		info := s.gw.GetTokenInfo(ctx, token)
		info.Type = tokenTypeFor(kind)
		caches.mu.Lock()
		caches.tokens[token] = info
		caches.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return TokenInfo{}, err
	}
	return v.(TokenInfo), nil
}

func (s *Scanner) spenderInfo(ctx context.Context, caches *scanCaches, spender string) (SpenderInfo, error) {
	caches.mu.Lock()
	if info, ok := caches.spenders[spender]; ok {
		caches.mu.Unlock()
		return info, nil
	}
	caches.mu.Unlock()

	v, err, _ := caches.flight.Do("spender:"+spender, func() (interface{}, error) {
		isContract, err := s.gw.IsContract(ctx, spender)
		if err != nil {
			return nil, err
		}
		info := s.classifier.Classify(ctx, spender, isContract)
		caches.mu.Lock()
		caches.spenders[spender] = info
		caches.mu.Unlock()
		return info, nil
	})
	if err != nil {
		return SpenderInfo{}, err
	}
	return v.(SpenderInfo), nil
}

func tokenTypeFor(kind ApprovalKind) string {
	switch kind {
	case KindERC721Single, KindERC721All:
		return "ERC721"
	case KindERC1155All:
		return "ERC1155"
	default:
		return "ERC20"
	}
}
