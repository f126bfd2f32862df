package middleware

import "github.com/aretw0/courier/pkg/ports"

// Middleware allows wrapping a ClaimStore to add behavior.
type Middleware func(ports.ClaimStore) ports.ClaimStore

// Chain wraps store with mws. The first middleware is the outermost.
func Chain(store ports.ClaimStore, mws ...Middleware) ports.ClaimStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
