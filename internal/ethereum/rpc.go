package ethereum

import "context"

// RPCClient defines the Ethereum JSON-RPC HTTP interface.
type RPCClient interface {
	// BlockNumber retrieves the latest block number.
	BlockNumber(ctx context.Context) (uint64, error)

	// GetBlockByNumber retrieves block header fields by number.
	GetBlockByNumber(ctx context.Context, number uint64) (*Block, error)

	// GetLogs retrieves logs matching the filter over a block range.
	GetLogs(ctx context.Context, filter LogsFilter) ([]Log, error)

	// CallContract performs a read-only eth_call against the latest block.
	CallContract(ctx context.Context, to string, data string) (string, error)

	// CallContractAt performs a read-only eth_call against a specific block.
	// Requires an archive node for blocks outside the recent window.
	CallContractAt(ctx context.Context, to string, data string, block uint64) (string, error)
}

// Block represents the header fields the tracker needs.
type Block struct {
	Number    uint64
	Hash      string
	Timestamp int64 // Unix timestamp (seconds)
}
