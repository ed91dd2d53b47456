package notary

import (
	"reflect"

	otx "github.com/secureonelabs/opentxs-sub000"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler.
type Decorators struct {
	chain []otx.Decorator
}

/*
ChainDecorators takes a chain of decorators, and upon adding a final
Handler (usually the Router), returns a Handler that will execute the
whole stack.

	notary.ChainDecorators(
	  utils.NewLogging(),
	  utils.NewRecovery(),
	  utils.NewSavepoint().OnDeliver(),
	).WithHandler(
	  notary.NewRouter(),
	)
*/
func ChainDecorators(chain ...otx.Decorator) Decorators {
	chain = cutoffNil(chain)
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain.
func (d Decorators) Chain(chain ...otx.Decorator) Decorators {
	chain = cutoffNil(chain)
	newChain := append(d.chain, chain...)
	return Decorators{newChain}
}

// cutoffNil will in-place remove all nil values from given slice.
func cutoffNil(ds []otx.Decorator) []otx.Decorator {
	var cutoff int
	for i := 0; i < len(ds); i++ {
		ds[i-cutoff] = ds[i]
		if ds[i] == nil || (reflect.ValueOf(ds[i]).Kind() == reflect.Ptr && reflect.ValueOf(ds[i]).IsNil()) {
			cutoff++
		}
	}
	return ds[:len(ds)-cutoff]
}

// WithHandler resolves the stack and returns a concrete Handler that
// passes through the chain of decorators before calling the final one.
func (d Decorators) WithHandler(h otx.Handler) otx.Handler {
	// start wrapping the handler from last decorator to first one
	// as the top of the chain is understood to be executed first
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a specific
// Handler. Simplified version of a closure.
type step struct {
	d    otx.Decorator
	next otx.Handler
}

var _ otx.Handler = step{}

func (s step) Check(ctx otx.Context, store otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	return s.d.Check(ctx, store, tx, s.next)
}

func (s step) Deliver(ctx otx.Context, store otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	return s.d.Deliver(ctx, store, tx, s.next)
}
