package notarytest

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/x"
)

// Auth is a mock x.Authenticator implementation that authenticates a fixed
// set of conditions, ignoring the context.
type Auth struct {
	// Signer is returned by GetConditions if set. For more than one
	// signer use Signers.
	Signer otx.Condition
	// Signers are returned by GetConditions if set.
	Signers []otx.Condition
}

var _ x.Authenticator = (*Auth)(nil)

func (a *Auth) GetConditions(otx.Context) []otx.Condition {
	if len(a.Signers) > 0 {
		return a.Signers
	}
	if a.Signer != nil {
		return []otx.Condition{a.Signer}
	}
	return nil
}

func (a *Auth) HasAddress(ctx otx.Context, addr otx.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
