package ethereum

import (
	"fmt"
	"math/big"
	"strings"
)

// Log represents an Ethereum event log.
type Log struct {
	Address          string   `json:"address"`
	Topics           []string `json:"topics"`
	Data             string   `json:"data"`
	BlockNumber      string   `json:"blockNumber"`
	TransactionHash  string   `json:"transactionHash"`
	TransactionIndex string   `json:"transactionIndex"`
	BlockHash        string   `json:"blockHash"`
	LogIndex         string   `json:"logIndex"`
	Removed          bool     `json:"removed"`
}

// LogsFilter defines a log query / subscription filter.
type LogsFilter struct {
	// FromBlock and ToBlock bound the query range (eth_getLogs only).
	FromBlock uint64
	ToBlock   uint64
	// Addresses restricts logs to these contract addresses.
	Addresses []string
	// Topics filters on topic0..topicN positionally; empty string matches any.
	Topics []string
}

// HexToUint64 parses a 0x-prefixed hex quantity.
func HexToUint64(s string) (uint64, error) {
	b, err := HexToBig(s)
	if err != nil {
		return 0, err
	}
	if !b.IsUint64() {
		return 0, fmt.Errorf("hex quantity %q overflows uint64", s)
	}
	return b.Uint64(), nil
}

// HexToBig parses a 0x-prefixed hex quantity into a big.Int.
func HexToBig(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("empty hex quantity %q", s)
	}
	b, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return b, nil
}

// Uint64ToHex renders a quantity in the 0x form RPC expects.
func Uint64ToHex(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}

// TopicToAddress extracts the 20-byte address from a 32-byte topic word.
func TopicToAddress(topic string) (string, error) {
	trimmed := strings.TrimPrefix(topic, "0x")
	if len(trimmed) != 64 {
		return "", fmt.Errorf("topic %q is not a 32-byte word", topic)
	}
	return "0x" + strings.ToLower(trimmed[24:]), nil
}

// DataWord extracts the i-th 32-byte word from an ABI-encoded data blob.
func DataWord(data string, i int) (string, error) {
	trimmed := strings.TrimPrefix(data, "0x")
	start := i * 64
	if start+64 > len(trimmed) {
		return "", fmt.Errorf("data has no word %d", i)
	}
	return trimmed[start : start+64], nil
}

// WordToBig parses a 32-byte word as an unsigned integer.
func WordToBig(word string) (*big.Int, error) {
	b, ok := new(big.Int).SetString(word, 16)
	if !ok {
		return nil, fmt.Errorf("invalid data word %q", word)
	}
	return b, nil
}

// WordToAddress extracts the trailing 20 bytes of a 32-byte word as an address.
func WordToAddress(word string) (string, error) {
	if len(word) != 64 {
		return "", fmt.Errorf("word %q is not 32 bytes", word)
	}
	return "0x" + strings.ToLower(word[24:]), nil
}
