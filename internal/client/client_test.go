package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"liquidation-radar/internal/domain"
)

func pageServer(t *testing.T, total int, hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path != "/liquidations" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		var data []*domain.LiquidationRecord
		for i := offset; i < offset+limit && i < total; i++ {
			data = append(data, &domain.LiquidationRecord{
				ID:             fmt.Sprintf("0xtx-%d", i),
				User:           "0x1111111111111111111111111111111111111111",
				BlockTimestamp: int64(1700000000 + i),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Page{
			Data:       data,
			TotalCount: total,
			Limit:      limit,
			Offset:     offset,
		})
	}))
}

func TestClient_Fetch(t *testing.T) {
	server := pageServer(t, 5, nil)
	defer server.Close()

	c := New(server.URL)

	page, err := c.Fetch(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if page.TotalCount != 5 {
		t.Errorf("expected total 5, got %d", page.TotalCount)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 records, got %d", len(page.Data))
	}
	if page.Data[0].ID != "0xtx-1" {
		t.Errorf("expected first record 0xtx-1, got %s", page.Data[0].ID)
	}
}

func TestClient_FetchBadParams(t *testing.T) {
	c := New("http://unused")

	if _, err := c.Fetch(context.Background(), 0, 0); err == nil {
		t.Error("expected error for zero limit")
	}
	if _, err := c.Fetch(context.Background(), 10, -1); err == nil {
		t.Error("expected error for negative offset")
	}
}

func TestClient_FetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL)

	if _, err := c.Fetch(context.Background(), 10, 0); err == nil {
		t.Error("expected error on 500")
	}
}

func TestClient_FetchUsesCache(t *testing.T) {
	var hits atomic.Int32
	server := pageServer(t, 3, &hits)
	defer server.Close()

	cache := NewMemoryCache()
	defer cache.Close()

	c := New(server.URL, WithCache(cache, time.Minute))

	for i := 0; i < 3; i++ {
		page, err := c.Fetch(context.Background(), 10, 0)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(page.Data) != 3 {
			t.Fatalf("expected 3 records, got %d", len(page.Data))
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 server hit with cache, got %d", got)
	}
}

func TestClient_FetchAll(t *testing.T) {
	server := pageServer(t, 2500, nil)
	defer server.Close()

	c := New(server.URL)

	records, err := c.FetchAll(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	if len(records) != 2500 {
		t.Fatalf("expected 2500 records, got %d", len(records))
	}
	if records[0].ID != "0xtx-0" || records[2499].ID != "0xtx-2499" {
		t.Error("records out of order or missing")
	}
}

func TestClient_FetchAllBounded(t *testing.T) {
	server := pageServer(t, 2500, nil)
	defer server.Close()

	c := New(server.URL)

	records, err := c.FetchAll(context.Background(), 100)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	if len(records) != 100 {
		t.Fatalf("expected 100 records, got %d", len(records))
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()

	ctx := context.Background()
	cache.Set(ctx, "k", []byte("v"), 20*time.Millisecond)

	if v, ok := cache.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatal("expected fresh value")
	}

	time.Sleep(40 * time.Millisecond)

	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("expected expired value to be gone")
	}
}

func TestClient_Invalidate(t *testing.T) {
	var hits atomic.Int32
	server := pageServer(t, 3, &hits)
	defer server.Close()

	cache := NewMemoryCache()
	defer cache.Close()

	c := New(server.URL, WithCache(cache, time.Minute))
	ctx := context.Background()

	if _, err := c.Fetch(ctx, 10, 0); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, err := c.Fetch(ctx, 10, 0); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected 1 server hit before invalidation, got %d", got)
	}

	c.Invalidate(ctx)

	if _, err := c.Fetch(ctx, 10, 0); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("expected 2 server hits after invalidation, got %d", got)
	}
}
