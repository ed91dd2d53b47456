package notary

import (
	"context"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/x"
)

type contextKey int

const contextKeySigner contextKey = iota

// withSigner records the condition whose envelope signature was verified
// for this request. Handlers read it back through Authenticate().
func withSigner(ctx otx.Context, c otx.Condition) otx.Context {
	return context.WithValue(ctx, contextKeySigner, c)
}

// ctxAuth exposes the verified envelope signer as an x.Authenticator.
type ctxAuth struct{}

var _ x.Authenticator = ctxAuth{}

// Authenticate returns the authenticator backed by the dispatcher's
// envelope signature check. Pass it to every handler constructor.
func Authenticate() x.Authenticator {
	return ctxAuth{}
}

func (ctxAuth) GetConditions(ctx otx.Context) []otx.Condition {
	c, ok := ctx.Value(contextKeySigner).(otx.Condition)
	if !ok || c == nil {
		return nil
	}
	return []otx.Condition{c}
}

func (a ctxAuth) HasAddress(ctx otx.Context, addr otx.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
