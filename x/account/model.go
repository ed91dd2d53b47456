package account

import (
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Account is one custodial balance, denominated in a single instrument.
type Account struct {
	// Owner is the identity in control of the account.
	Owner otx.Address `json:"owner"`
	// Instrument names the currency or asset the balance is counted in.
	Instrument string `json:"instrument"`
	Balance    coin.Coin `json:"balance"`
	// Internal marks reserve accounts. They never receive transfers and
	// clients cannot operate on them directly.
	Internal bool `json:"internal,omitempty"`
	// AllowNegative permits a negative balance, used by issuer accounts
	// whose balance records shares outstanding.
	AllowNegative bool `json:"allow_negative,omitempty"`
}

var _ otx.Persistent = (*Account)(nil)

func (a *Account) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

func (a *Account) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, a)
}

func (a *Account) Validate() error {
	var err error
	if verr := a.Owner.Validate(); verr != nil {
		err = errors.AppendField(err, "Owner", verr)
	}
	if !coin.IsCC(a.Instrument) {
		err = errors.AppendField(err, "Instrument", errors.ErrInput)
	}
	if verr := a.Balance.Validate(); verr != nil {
		err = errors.AppendField(err, "Balance", verr)
	}
	if a.Balance.Ticker != a.Instrument {
		err = errors.AppendField(err, "Balance", errors.Wrap(errors.ErrState, "instrument mismatch"))
	}
	if !a.AllowNegative && !a.Balance.IsNonNegative() {
		err = errors.AppendField(err, "Balance", errors.Wrap(errors.ErrAmount, "negative balance"))
	}
	return err
}

// Component is one leg of a basket instrument: Weight units of Instrument
// back one unit of the basket.
type Component struct {
	Instrument string `json:"instrument"`
	Weight     int64  `json:"weight"`
}

// Definition describes one instrument: who issued it and, for basket
// instruments, what backs it.
type Definition struct {
	// ID is the instrument name accounts refer to.
	ID string `json:"id"`
	// Issuer is the identity allowed to pay dividends on this instrument.
	Issuer otx.Address `json:"issuer"`
	// Basket lists the component legs of a basket instrument, empty for
	// simple instruments.
	Basket []Component `json:"basket,omitempty"`
}

var _ otx.Persistent = (*Definition)(nil)

func (d *Definition) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Definition) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, d)
}

func (d *Definition) Validate() error {
	var err error
	if !coin.IsCC(d.ID) {
		err = errors.AppendField(err, "ID", errors.ErrInput)
	}
	if verr := d.Issuer.Validate(); verr != nil {
		err = errors.AppendField(err, "Issuer", verr)
	}
	seen := make(map[string]bool, len(d.Basket))
	for i, c := range d.Basket {
		if !coin.IsCC(c.Instrument) || c.Instrument == d.ID {
			err = errors.AppendField(err, "Basket", errors.Wrapf(errors.ErrInput, "component #%d", i))
		}
		if c.Weight <= 0 {
			err = errors.AppendField(err, "Basket", errors.Wrapf(errors.ErrAmount, "component #%d", i))
		}
		if seen[c.Instrument] {
			err = errors.AppendField(err, "Basket", errors.Wrapf(errors.ErrDuplicate, "component #%d", i))
		}
		seen[c.Instrument] = true
	}
	return err
}

// IsBasket reports whether the instrument is backed by component legs.
func (d *Definition) IsBasket() bool {
	return len(d.Basket) > 0
}
