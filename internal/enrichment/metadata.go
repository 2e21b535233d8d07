// Package enrichment resolves token metadata, oracle prices, and
// liquidation latency for stored records. Every lookup is best-effort:
// a failed stage leaves its fields unset instead of failing the record.
package enrichment

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"liquidation-radar/internal/ethereum"
)

// ERC20 function selectors.
const (
	selectorDecimals = "0x313ce567"
	selectorSymbol   = "0x95d89b41"
)

// ReserveMetadata holds the token fields needed for USD conversion.
type ReserveMetadata struct {
	Symbol   *string
	Decimals *int
}

// ReserveMetadataSource resolves ERC20 symbol and decimals via eth_call,
// caching results per asset.
type ReserveMetadataSource struct {
	rpc ethereum.RPCClient

	mu    sync.Mutex
	cache map[string]ReserveMetadata
}

// NewReserveMetadataSource creates a new metadata source.
func NewReserveMetadataSource(rpc ethereum.RPCClient) *ReserveMetadataSource {
	return &ReserveMetadataSource{
		rpc:   rpc,
		cache: make(map[string]ReserveMetadata),
	}
}

// Lookup returns symbol and decimals for an asset. Fields that could not
// be resolved are nil. Complete results are cached.
func (s *ReserveMetadataSource) Lookup(ctx context.Context, asset string) ReserveMetadata {
	asset = strings.ToLower(asset)

	s.mu.Lock()
	if meta, ok := s.cache[asset]; ok {
		s.mu.Unlock()
		return meta
	}
	s.mu.Unlock()

	var meta ReserveMetadata

	if raw, err := s.rpc.CallContract(ctx, asset, selectorSymbol); err == nil {
		if symbol, err := decodeStringResult(raw); err == nil && symbol != "" {
			meta.Symbol = &symbol
		}
	}

	if raw, err := s.rpc.CallContract(ctx, asset, selectorDecimals); err == nil {
		if decimals, err := decodeUintResult(raw); err == nil && decimals <= 255 {
			d := int(decimals)
			meta.Decimals = &d
		}
	}

	// Cache only complete results so partial failures get retried
	if meta.Symbol != nil && meta.Decimals != nil {
		s.mu.Lock()
		s.cache[asset] = meta
		s.mu.Unlock()
	}

	return meta
}

// decodeStringResult decodes an ABI-encoded string return value.
// Some older tokens return bytes32 instead; those are handled too.
func decodeStringResult(raw string) (string, error) {
	trimmed := strings.TrimPrefix(raw, "0x")
	if trimmed == "" {
		return "", fmt.Errorf("empty result")
	}

	// bytes32 symbol (e.g. MKR): single right-padded word
	if len(trimmed) == 64 {
		return decodeBytes32(trimmed)
	}

	// Dynamic string: offset word, length word, then data
	if len(trimmed) < 128 {
		return "", fmt.Errorf("result too short for string: %d chars", len(trimmed))
	}

	length, err := ethereum.WordToBig(trimmed[64:128])
	if err != nil {
		return "", err
	}
	n := int(length.Int64())
	if n < 0 || 128+n*2 > len(trimmed) {
		return "", fmt.Errorf("string length %d out of bounds", n)
	}

	return hexToASCII(trimmed[128 : 128+n*2])
}

func decodeBytes32(word string) (string, error) {
	end := len(word)
	for end >= 2 && word[end-2:end] == "00" {
		end -= 2
	}
	return hexToASCII(word[:end])
}

func hexToASCII(hexStr string) (string, error) {
	buf, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// decodeUintResult decodes a single uint return value.
func decodeUintResult(raw string) (uint64, error) {
	b, err := ethereum.HexToBig(raw)
	if err != nil {
		return 0, err
	}
	if !b.IsUint64() {
		return 0, fmt.Errorf("uint result overflows uint64")
	}
	return b.Uint64(), nil
}
