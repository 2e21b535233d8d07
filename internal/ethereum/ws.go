package ethereum

import "context"

// WSClient defines the Ethereum WebSocket subscription interface.
type WSClient interface {
	// SubscribeLogs subscribes to new logs matching the filter.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan Log, error)

	// Close closes the WebSocket connection.
	Close() error
}
