package ethereum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClient_BlockNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "eth_blockNumber" {
			t.Errorf("expected method eth_blockNumber, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x121eac0",
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	num, err := client.BlockNumber(context.Background())
	if err != nil {
		t.Fatalf("BlockNumber: %v", err)
	}

	if num != 19000000 {
		t.Errorf("expected block 19000000, got %d", num)
	}
}

func TestHTTPClient_GetBlockByNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "eth_getBlockByNumber" {
			t.Errorf("expected method eth_getBlockByNumber, got %s", req.Method)
		}

		if len(req.Params) != 2 || req.Params[0] != "0x121eac0" {
			t.Errorf("unexpected params: %v", req.Params)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"number":    "0x121eac0",
				"hash":      "0xblockhash",
				"timestamp": "0x6554fe00",
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	block, err := client.GetBlockByNumber(context.Background(), 19000000)
	if err != nil {
		t.Fatalf("GetBlockByNumber: %v", err)
	}
	if block == nil {
		t.Fatal("expected block, got nil")
	}

	if block.Number != 19000000 {
		t.Errorf("expected number 19000000, got %d", block.Number)
	}
	if block.Timestamp != 1700068864 {
		t.Errorf("expected timestamp 1700068864, got %d", block.Timestamp)
	}
}

func TestHTTPClient_GetBlockByNumber_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  nil,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	block, err := client.GetBlockByNumber(context.Background(), 99999999)
	if err != nil {
		t.Fatalf("GetBlockByNumber: %v", err)
	}
	if block != nil {
		t.Errorf("expected nil for missing block, got %+v", block)
	}
}

func TestHTTPClient_GetLogs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "eth_getLogs" {
			t.Errorf("expected method eth_getLogs, got %s", req.Method)
		}

		if len(req.Params) != 1 {
			t.Fatalf("expected 1 param, got %d", len(req.Params))
		}
		query, ok := req.Params[0].(map[string]interface{})
		if !ok {
			t.Fatalf("expected filter object, got %T", req.Params[0])
		}
		if query["fromBlock"] != "0x64" || query["toBlock"] != "0xc8" {
			t.Errorf("unexpected block range: %v..%v", query["fromBlock"], query["toBlock"])
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": []map[string]interface{}{
				{
					"address":         "0x87870bca3f3fd6335c3f4ce8392d69350b4fa4e2",
					"topics":          []string{"0xtopic0", "0xtopic1"},
					"data":            "0xdeadbeef",
					"blockNumber":     "0x64",
					"transactionHash": "0xtxhash",
					"logIndex":        "0x2a",
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	logs, err := client.GetLogs(context.Background(), LogsFilter{
		FromBlock: 100,
		ToBlock:   200,
		Addresses: []string{"0x87870bca3f3fd6335c3f4ce8392d69350b4fa4e2"},
		Topics:    []string{"0xtopic0"},
	})
	if err != nil {
		t.Fatalf("GetLogs: %v", err)
	}

	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	if logs[0].TransactionHash != "0xtxhash" {
		t.Errorf("expected tx hash 0xtxhash, got %s", logs[0].TransactionHash)
	}
	if logs[0].LogIndex != "0x2a" {
		t.Errorf("expected log index 0x2a, got %s", logs[0].LogIndex)
	}
	if len(logs[0].Topics) != 2 {
		t.Errorf("expected 2 topics, got %d", len(logs[0].Topics))
	}
}

func TestHTTPClient_CallContract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "eth_call" {
			t.Errorf("expected method eth_call, got %s", req.Method)
		}

		if len(req.Params) != 2 || req.Params[1] != "latest" {
			t.Errorf("unexpected params: %v", req.Params)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x0000000000000000000000000000000000000000000000000000000000000012",
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	result, err := client.CallContract(context.Background(),
		"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", "0x313ce567")
	if err != nil {
		t.Fatalf("CallContract: %v", err)
	}

	if result != "0x0000000000000000000000000000000000000000000000000000000000000012" {
		t.Errorf("unexpected result: %s", result)
	}
}

func TestHTTPClient_RetryOnServerError(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x1",
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithMaxRetries(3),
		WithRetryDelay(10*time.Millisecond),
		WithMaxDelay(50*time.Millisecond),
	)

	num, err := client.BlockNumber(context.Background())
	if err != nil {
		t.Fatalf("BlockNumber after retries: %v", err)
	}
	if num != 1 {
		t.Errorf("expected block 1, got %d", num)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		calls.Add(1)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32602,
				"message": "invalid params",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(10*time.Millisecond))

	_, err := client.BlockNumber(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call (no retries on RPC error), got %d", got)
	}
}
