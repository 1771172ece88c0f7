package challenge

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedListener(t *testing.T) *ReturnListener {
	t.Helper()
	l, err := NewReturnListener("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, l.Start())
	t.Cleanup(func() { l.Close() })
	return l
}

func TestReturnListener_RedirectUnblocksComplete(t *testing.T) {
	l := newStartedListener(t)
	require.True(t, strings.HasPrefix(l.ReturnURL(), "http://127.0.0.1:"))

	done := make(chan error, 1)
	go func() {
		done <- l.Complete(context.Background(), "https://provider.example/3ds")
	}()

	resp, err := http.Get(l.ReturnURL() + "?redirect_status=succeeded")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Complete did not unblock after the redirect")
	}
}

func TestReturnListener_SecondRedirectIgnored(t *testing.T) {
	l := newStartedListener(t)

	for i := 0; i < 2; i++ {
		resp, err := http.Get(l.ReturnURL() + "?redirect_status=succeeded")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// exactly one completion is queued
	require.NoError(t, l.Complete(context.Background(), "https://provider.example/3ds"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Complete(ctx, "https://provider.example/3ds"), context.DeadlineExceeded)
}

func TestReturnListener_ContextCancellation(t *testing.T) {
	l := newStartedListener(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.Complete(ctx, "https://provider.example/3ds")
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Complete did not unblock on cancellation")
	}
}

func TestNewReturnListener_RequiresAddr(t *testing.T) {
	_, err := NewReturnListener("")
	assert.Error(t, err)
}
