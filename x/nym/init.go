package nym

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Initializer registers identities and their initial number grants from
// genesis options.
type Initializer struct{}

var _ otx.Initializer = (*Initializer)(nil)

// FromGenesis reads the "nyms" option:
//
//	"nyms": [
//	  {"address": "hex", "pubkey": "hex", "numbers": [1, 2, 3]}
//	]
func (Initializer) FromGenesis(opts otx.Options, db otx.KVStore) error {
	var nyms []struct {
		Address otx.Address      `json:"address"`
		Pubkey  crypto.PublicKey `json:"pubkey"`
		Numbers []int64          `json:"numbers"`
	}
	if err := opts.ReadOptions("nyms", &nyms); err != nil {
		return errors.Wrap(err, "cannot load nyms")
	}
	ctrl := NewController()
	for i, n := range nyms {
		if err := n.Address.Validate(); err != nil {
			return errors.Wrapf(err, "nym #%d address", i)
		}
		if err := ctrl.Register(db, n.Address, n.Pubkey); err != nil {
			return errors.Wrapf(err, "nym #%d", i)
		}
		if len(n.Numbers) == 0 {
			continue
		}
		if err := ctrl.AcceptIssuedNumbers(db, n.Address, n.Numbers); err != nil {
			return errors.Wrapf(err, "nym #%d numbers", i)
		}
	}
	return nil
}
