package indexer

import (
	"context"
	"sync"
	"testing"
	"time"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/ethereum"
	"liquidation-radar/internal/storage/memory"
)

// stubWSClient feeds canned logs through the WSClient interface.
type stubWSClient struct {
	ch chan ethereum.Log
}

func (s *stubWSClient) SubscribeLogs(ctx context.Context, filter ethereum.LogsFilter) (<-chan ethereum.Log, error) {
	return s.ch, nil
}

func (s *stubWSClient) Close() error {
	close(s.ch)
	return nil
}

// stubRPC resolves block timestamps from a fixed map.
type stubRPC struct {
	blockTimes map[uint64]int64
	calls      int
}

func (s *stubRPC) BlockNumber(ctx context.Context) (uint64, error) { return 0, nil }

func (s *stubRPC) GetBlockByNumber(ctx context.Context, number uint64) (*ethereum.Block, error) {
	s.calls++
	ts, ok := s.blockTimes[number]
	if !ok {
		return nil, nil
	}
	return &ethereum.Block{Number: number, Timestamp: ts}, nil
}

func (s *stubRPC) GetLogs(ctx context.Context, filter ethereum.LogsFilter) ([]ethereum.Log, error) {
	return nil, nil
}

func (s *stubRPC) CallContract(ctx context.Context, to, data string) (string, error) {
	return "0x", nil
}

func (s *stubRPC) CallContractAt(ctx context.Context, to, data string, block uint64) (string, error) {
	return "0x", nil
}

// stubEnricher tags every record with a fixed collateral symbol.
type stubEnricher struct{}

func (stubEnricher) Enrich(ctx context.Context, r *domain.LiquidationRecord) *domain.LiquidationAnalysis {
	symbol := "WETH"
	decimals := 18
	price := 2500.0
	return &domain.LiquidationAnalysis{
		CollateralSymbol:   &symbol,
		CollateralDecimals: &decimals,
		CollateralPriceUsd: &price,
	}
}

// stubPublisher records everything published.
type stubPublisher struct {
	mu      sync.Mutex
	records []*domain.LiquidationRecord
}

func (p *stubPublisher) Publish(ctx context.Context, r *domain.LiquidationRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestRunner_StoresAndPublishes(t *testing.T) {
	ws := &stubWSClient{ch: make(chan ethereum.Log, 10)}
	rpc := &stubRPC{blockTimes: map[uint64]int64{19000000: 1700000000}}
	store := memory.NewLiquidationStore()
	publisher := &stubPublisher{}

	source := NewWSLiquidationSource(ws, rpc, "")
	runner := NewRunner(RunnerOptions{
		Source:    source,
		Store:     store,
		Enricher:  stubEnricher{},
		Publisher: publisher,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	ws.ch <- validLiquidationLog()

	waitFor(t, 5*time.Second, func() bool { return publisher.count() == 1 })

	record, err := store.GetByID(ctx, "0xdeadbeef-42")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if record.BlockTimestamp != 1700000000 {
		t.Errorf("expected block timestamp resolved via RPC, got %d", record.BlockTimestamp)
	}
	if record.CollateralSymbol == nil || *record.CollateralSymbol != "WETH" {
		t.Error("expected record enriched before store")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop on context cancel")
	}
}

func TestRunner_SkipsDuplicatesAndRemovedLogs(t *testing.T) {
	ws := &stubWSClient{ch: make(chan ethereum.Log, 10)}
	rpc := &stubRPC{blockTimes: map[uint64]int64{19000000: 1700000000}}
	store := memory.NewLiquidationStore()
	publisher := &stubPublisher{}

	source := NewWSLiquidationSource(ws, rpc, "")
	runner := NewRunner(RunnerOptions{
		Source:    source,
		Store:     store,
		Publisher: publisher,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runner.Run(ctx)

	removed := validLiquidationLog()
	removed.Removed = true
	ws.ch <- removed

	// Same event twice, as after a reconnect replay
	ws.ch <- validLiquidationLog()
	ws.ch <- validLiquidationLog()

	waitFor(t, 5*time.Second, func() bool {
		n, err := store.Count(ctx)
		return err == nil && n == 1 && publisher.count() == 1
	})
}

func TestWSLiquidationSource_CachesBlockTimestamps(t *testing.T) {
	ws := &stubWSClient{ch: make(chan ethereum.Log, 10)}
	rpc := &stubRPC{blockTimes: map[uint64]int64{19000000: 1700000000}}

	source := NewWSLiquidationSource(ws, rpc, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recordsCh, err := source.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Two logs in the same block
	first := validLiquidationLog()
	second := validLiquidationLog()
	second.LogIndex = "0x2b"
	ws.ch <- first
	ws.ch <- second

	for i := 0; i < 2; i++ {
		select {
		case <-recordsCh:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for record")
		}
	}

	if rpc.calls != 1 {
		t.Errorf("expected 1 RPC call for shared block, got %d", rpc.calls)
	}
}
