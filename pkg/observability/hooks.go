// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through a global registry of hook interfaces whose
// defaults do nothing. Binaries that want metrics register real
// implementations at startup (see the prom subpackage); libraries never
// import a metrics backend directly.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := prom.New(prometheus.DefaultRegisterer)
//	    observability.SetValidationHooks(m)
//	    observability.SetQiHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	res := engine.Compute(q, min)
//	observability.Qi().OnQiComputed(q.Size(), string(res.Method), res.Value, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Validation Hooks
// =============================================================================

// ValidationHooks receives events from the merge-and-validate driver.
type ValidationHooks interface {
	OnRunStart(ctx context.Context, runID string, vertices, criticalK int)
	OnStep(ctx context.Context, runID string, blocks, qi, required int, verdict string, duration time.Duration)
	OnRunComplete(ctx context.Context, runID, outcome string, steps int, duration time.Duration, err error)
}

// =============================================================================
// Qi Hooks
// =============================================================================

// QiHooks receives events from the qi-number engine. The engine runs
// without a context, so these hooks take none.
type QiHooks interface {
	// OnQiComputed records one engine call. method is trivial, exact,
	// heuristic or undetermined.
	OnQiComputed(blocks int, method string, value int, duration time.Duration)

	// OnOracleFailure records a coloring oracle error that the engine
	// recovered from.
	OnOracleFailure(oracle string, blocks int, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopValidationHooks is a no-op implementation of ValidationHooks.
type NoopValidationHooks struct{}

func (NoopValidationHooks) OnRunStart(context.Context, string, int, int) {}
func (NoopValidationHooks) OnStep(context.Context, string, int, int, int, string, time.Duration) {
}
func (NoopValidationHooks) OnRunComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopQiHooks is a no-op implementation of QiHooks.
type NoopQiHooks struct{}

func (NoopQiHooks) OnQiComputed(int, string, int, time.Duration) {}
func (NoopQiHooks) OnOracleFailure(string, int, error)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                       {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	validationHooks ValidationHooks = NoopValidationHooks{}
	qiHooks         QiHooks         = NoopQiHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	serverHooks     ServerHooks     = NoopServerHooks{}
	hooksMu         sync.RWMutex
)

// SetValidationHooks registers custom validation hooks.
// This should be called once at application startup before any run starts.
func SetValidationHooks(h ValidationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		validationHooks = h
	}
}

// SetQiHooks registers custom qi engine hooks.
func SetQiHooks(h QiHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		qiHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom HTTP server hooks.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Validation returns the registered validation hooks.
func Validation() ValidationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return validationHooks
}

// Qi returns the registered qi engine hooks.
func Qi() QiHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return qiHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered HTTP server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	validationHooks = NoopValidationHooks{}
	qiHooks = NoopQiHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
