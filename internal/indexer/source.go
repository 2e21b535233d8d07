package indexer

import (
	"context"
	"log"
	"time"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/ethereum"
)

const (
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// retryGetBlock fetches a block header with exponential backoff retry.
func retryGetBlock(ctx context.Context, rpc ethereum.RPCClient, number uint64) (*ethereum.Block, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		block, err := rpc.GetBlockByNumber(ctx, number)
		if err == nil {
			return block, nil
		}
		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Exponential backoff: 500ms, 1s, 2s
		delay := baseRetryDelay * time.Duration(1<<attempt)
		log.Printf("[ws] Retry %d/%d for GetBlockByNumber %d after %v: %v", attempt+1, maxRetries, number, delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// WSLiquidationSource provides real-time liquidation records via WebSocket subscription.
type WSLiquidationSource struct {
	ws   ethereum.WSClient
	rpc  ethereum.RPCClient // For resolving block timestamps
	pool string

	// blockTimes caches block number -> timestamp; several liquidations
	// can land in one block.
	blockTimes map[uint64]int64
}

// NewWSLiquidationSource creates a new WebSocket-based liquidation source.
// pool is the Aave Pool contract address to watch.
func NewWSLiquidationSource(ws ethereum.WSClient, rpc ethereum.RPCClient, pool string) *WSLiquidationSource {
	if pool == "" {
		pool = AavePoolAddress
	}
	return &WSLiquidationSource{
		ws:         ws,
		rpc:        rpc,
		pool:       pool,
		blockTimes: make(map[uint64]int64),
	}
}

// Subscribe returns a channel of liquidation records from live WebSocket subscription.
// The channel is closed when the context is cancelled or the upstream closes.
func (s *WSLiquidationSource) Subscribe(ctx context.Context) (<-chan *domain.LiquidationRecord, error) {
	logsCh, err := s.ws.SubscribeLogs(ctx, ethereum.LogsFilter{
		Addresses: []string{s.pool},
		Topics:    []string{LiquidationCallTopic},
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[ws-liq] Subscribed to pool: %s", s.pool)

	recordsCh := make(chan *domain.LiquidationRecord, 100)

	go func() {
		defer close(recordsCh)

		for {
			select {
			case <-ctx.Done():
				return
			case ethLog, ok := <-logsCh:
				if !ok {
					log.Println("[ws-liq] logs channel closed")
					return
				}
				s.processLog(ctx, recordsCh, ethLog)
			}
		}
	}()

	return recordsCh, nil
}

// processLog resolves the block timestamp, decodes the log, and emits the record.
func (s *WSLiquidationSource) processLog(ctx context.Context, out chan<- *domain.LiquidationRecord, ethLog ethereum.Log) {
	// Reorged-out logs are retracted, not events
	if ethLog.Removed {
		log.Printf("[ws-liq] Skipping removed log tx=%s", ethLog.TransactionHash)
		return
	}

	blockNumber, err := ethereum.HexToUint64(ethLog.BlockNumber)
	if err != nil {
		log.Printf("[ws-liq] Bad block number %q: %v", ethLog.BlockNumber, err)
		return
	}

	timestamp, ok := s.blockTimes[blockNumber]
	if !ok {
		block, err := retryGetBlock(ctx, s.rpc, blockNumber)
		if err != nil || block == nil {
			log.Printf("[ws-liq] Failed to resolve block %d: %v", blockNumber, err)
			return
		}
		timestamp = block.Timestamp
		s.blockTimes[blockNumber] = timestamp

		// Keep the cache from growing without bound
		if len(s.blockTimes) > 1024 {
			for n := range s.blockTimes {
				if n < blockNumber-256 {
					delete(s.blockTimes, n)
				}
			}
		}
	}

	record, err := DecodeLiquidation(ethLog, timestamp)
	if err != nil {
		log.Printf("[ws-liq] Failed to decode log tx=%s: %v", ethLog.TransactionHash, err)
		return
	}

	select {
	case out <- record:
	case <-ctx.Done():
	}
}
