package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tilecombat/cache"
	"github.com/kasuganosora/tilecombat/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeSSE_ReplaysThenStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, ps := testutil.SetupTestCache(t)
	ctx := context.Background()
	for _, e := range []string{`{"n":1}`, `{"n":2}`, `{"n":3}`} {
		require.NoError(t, cache.PushCapped(ctx, c, cache.EventLogKey, e, 10))
	}

	h := NewHandler(ps, c, nil)
	eng := gin.New()
	eng.GET("/events", h.ServeSSE)
	srv := httptest.NewServer(eng)
	defer srv.Close()

	reqCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+"/events?replay=2", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 32)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if l := sc.Text(); strings.HasPrefix(l, "data: ") {
				lines <- strings.TrimPrefix(l, "data: ")
			}
		}
		close(lines)
	}()

	want := []string{`{}`, `{"n":2}`, `{"n":3}`}
	for _, w := range want {
		select {
		case got := <-lines:
			assert.Equal(t, w, got)
		case <-reqCtx.Done():
			t.Fatal("stream ended early")
		}
	}

	// The replay was flushed after subscribing, so this cannot be missed.
	require.NoError(t, ps.Publish(ctx, cache.EventsChannel, `{"n":4}`))
	select {
	case got := <-lines:
		assert.Equal(t, `{"n":4}`, got)
	case <-reqCtx.Done():
		t.Fatal("live event not streamed")
	}
}
