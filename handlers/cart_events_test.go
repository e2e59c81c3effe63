package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FoodieHub/cart"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartEvent struct {
	Items []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	Total   string `json:"total"`
	Count   int    `json:"count"`
	Version uint64 `json:"version"`
}

// 逐行解析SSE的data欄位
func readCartEvents(t *testing.T, body io.Reader) <-chan cartEvent {
	events := make(chan cartEvent, 16)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var event cartEvent
			if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &event); err != nil {
				t.Errorf("decode event %q: %v", line, err)
				return
			}
			events <- event
		}
	}()
	return events
}

func nextCartEvent(t *testing.T, events <-chan cartEvent) cartEvent {
	t.Helper()
	select {
	case event, ok := <-events:
		require.True(t, ok, "stream closed")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no cart event received")
	}
	return cartEvent{}
}

func TestCartEventsHandler_StreamsEveryChange(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	finished := make(chan struct{})
	router := newCartRouter(registry, func(r *gin.Engine) {
		r.GET("/cart/events", func(c *gin.Context) {
			defer close(finished)
			CartEventsHandler(c)
		})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	s := &shopper{t: t, router: router}
	s.do(http.MethodPost, "/cart/add", burger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/cart/events", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: s.session})

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := readCartEvents(t, resp.Body)

	first := nextCartEvent(t, events)
	assert.Equal(t, uint64(1), first.Version)
	assert.Equal(t, "12.99", first.Total)
	require.Len(t, first.Items, 1)

	totals := []string{"25.98", "38.97"}
	for i, total := range totals {
		s.do(http.MethodPost, "/cart/add", burger())
		event := nextCartEvent(t, events)
		assert.Equal(t, uint64(i+2), event.Version)
		assert.Equal(t, total, event.Total)
		assert.Equal(t, i+2, event.Count)
	}

	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("handler still running after client disconnect")
	}
}

func TestSubscribeLatest_SkipsStaleVersions(t *testing.T) {
	t.Parallel()

	store := cart.NewStore()
	updates, cancel := subscribeLatest(store)

	for i := 0; i < 5; i++ {
		store.AddItem(cart.Candidate{ID: "1", Name: "Burger", Price: decimal.RequireFromString("12.99")})
	}

	select {
	case snapshot := <-updates:
		assert.Equal(t, uint64(5), snapshot.Version)
		assert.Equal(t, 5, snapshot.Count())
		assert.Equal(t, "64.95", snapshot.Total.StringFixed(2))
	default:
		t.Fatal("expected a pending snapshot")
	}

	select {
	case snapshot := <-updates:
		t.Fatalf("stale snapshot delivered: version %d", snapshot.Version)
	default:
	}

	cancel()
	store.Clear()
	select {
	case <-updates:
		t.Fatal("snapshot delivered after cancel")
	default:
	}
}
