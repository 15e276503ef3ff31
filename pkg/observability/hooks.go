// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout passes, store traffic, and the HTTP service.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, "flexible", len(items))
//	// ... compute positions ...
//	observability.Layout().OnLayoutComplete(ctx, "flexible", placed, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the grid controller.
type LayoutHooks interface {
	// Layout pass events
	OnLayoutStart(ctx context.Context, mode string, itemCount int)
	OnLayoutComplete(ctx context.Context, mode string, placed int, duration time.Duration)

	// OnMeasure records measurements accepted from the host.
	OnMeasure(ctx context.Context, count int)

	// OnReflow records a full cache reset. reason is "reflow", "width" or "items".
	OnReflow(ctx context.Context, reason string)

	// OnLoadMore records a pagination request starting at index from.
	OnLoadMore(ctx context.Context, from int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from measurement and position stores.
type StoreHooks interface {
	// OnHit records a lookup that found an entry.
	OnHit(ctx context.Context, store string)

	// OnMiss records a lookup that found nothing.
	OnMiss(ctx context.Context, store string)

	// OnSet records a write.
	OnSet(ctx context.Context, store string)

	// OnReset records a wholesale clear and how many entries were dropped.
	OnReset(ctx context.Context, store string, dropped int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the layout HTTP service.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                   {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, int, time.Duration) {}
func (NoopLayoutHooks) OnMeasure(context.Context, int)                               {}
func (NoopLayoutHooks) OnReflow(context.Context, string)                             {}
func (NoopLayoutHooks) OnLoadMore(context.Context, int)                              {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnHit(context.Context, string)        {}
func (NoopStoreHooks) OnMiss(context.Context, string)       {}
func (NoopStoreHooks) OnSet(context.Context, string)        {}
func (NoopStoreHooks) OnReset(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any grid is created.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
