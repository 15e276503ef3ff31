package cli

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/matzehuels/masonry/pkg/cache"
)

func TestServeShutsDownWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestNewLayoutCache(t *testing.T) {
	if _, ok := newLayoutCache(0).(*cache.NullCache); !ok {
		t.Error("size 0 should disable caching")
	}
	if _, ok := newLayoutCache(16).(*cache.MemoryCache); !ok {
		t.Error("positive size should give a memory cache")
	}
}
