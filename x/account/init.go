package account

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Initializer loads instrument definitions and initial accounts from
// genesis options.
type Initializer struct{}

var _ otx.Initializer = (*Initializer)(nil)

// FromGenesis reads the "instruments" and "accounts" options:
//
//	"instruments": [
//	  {"id": "USD", "issuer": "hex", "basket": [{"instrument": "EUR", "weight": 2}]}
//	],
//	"accounts": [
//	  {"id": "hex", "owner": "hex", "instrument": "USD",
//	   "balance": {"whole": 100}, "allow_negative": false}
//	]
func (Initializer) FromGenesis(opts otx.Options, db otx.KVStore) error {
	ctrl := NewController()

	var instruments []Definition
	if err := opts.ReadOptions("instruments", &instruments); err != nil {
		return errors.Wrap(err, "cannot load instruments")
	}
	for i := range instruments {
		if err := ctrl.CreateDefinition(db, &instruments[i]); err != nil {
			return errors.Wrapf(err, "instrument #%d", i)
		}
	}

	var accounts []struct {
		ID            otx.Address `json:"id"`
		Owner         otx.Address `json:"owner"`
		Instrument    string      `json:"instrument"`
		Balance       coin.Coin   `json:"balance"`
		AllowNegative bool        `json:"allow_negative"`
	}
	if err := opts.ReadOptions("accounts", &accounts); err != nil {
		return errors.Wrap(err, "cannot load accounts")
	}
	for i, acct := range accounts {
		if err := acct.ID.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d id", i)
		}
		balance := acct.Balance
		if balance.Ticker == "" {
			balance.Ticker = acct.Instrument
		}
		a := &Account{
			Owner:         acct.Owner,
			Instrument:    acct.Instrument,
			Balance:       balance,
			AllowNegative: acct.AllowNegative,
		}
		if err := ctrl.Create(db, acct.ID, a); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}
	return nil
}
