package exchange

import (
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// Direction of a basket exchange.
type Direction string

const (
	// In converts component holdings into basket units.
	In Direction = "in"
	// Out converts basket units back into component holdings.
	Out Direction = "out"
)

func (d Direction) Validate() error {
	switch d {
	case In, Out:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "direction %q", string(d))
}

// BasketMsg exchanges between basket units and their component legs.
type BasketMsg struct {
	// Basket is the basket instrument id.
	Basket string `json:"basket"`
	// Units is the number of basket units to exchange, in whole units.
	Units     int64     `json:"units"`
	Direction Direction `json:"direction"`
	// BasketAccount is the requester's account denominated in the basket
	// instrument.
	BasketAccount otx.Address `json:"basket_account"`
	// ComponentAccounts are the requester's accounts for each component
	// leg, in the order of the instrument definition.
	ComponentAccounts []otx.Address `json:"component_accounts"`
	// Statement speaks for the requester's number sets. An exchange
	// touches several accounts, so the account-less statement form is
	// used.
	Statement statement.TransactionStatement `json:"statement"`
}

var _ otx.Msg = (*BasketMsg)(nil)

func (BasketMsg) Path() string {
	return "exchange/basket"
}

func (BasketMsg) Disposition() otx.Disposition {
	return otx.OneShot
}

func (m *BasketMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *BasketMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *BasketMsg) Validate() error {
	var err error
	if !coin.IsCC(m.Basket) {
		err = errors.AppendField(err, "Basket", errors.ErrInput)
	}
	if m.Units <= 0 {
		err = errors.AppendField(err, "Units", errors.ErrAmount)
	}
	if verr := m.Direction.Validate(); verr != nil {
		err = errors.AppendField(err, "Direction", verr)
	}
	if verr := m.BasketAccount.Validate(); verr != nil {
		err = errors.AppendField(err, "BasketAccount", verr)
	}
	if len(m.ComponentAccounts) == 0 {
		err = errors.AppendField(err, "ComponentAccounts", errors.ErrEmpty)
	}
	for i, id := range m.ComponentAccounts {
		if verr := id.Validate(); verr != nil {
			err = errors.AppendField(err, "ComponentAccounts", errors.Wrapf(verr, "account #%d", i))
		}
	}
	if verr := m.Statement.Validate(); verr != nil {
		err = errors.AppendField(err, "Statement", verr)
	}
	return err
}

// InvolvedAccounts names the accounts the dispatcher must lock.
func (m *BasketMsg) InvolvedAccounts() []otx.Address {
	ids := make([]otx.Address, 0, len(m.ComponentAccounts)+1)
	ids = append(ids, m.BasketAccount)
	return append(ids, m.ComponentAccounts...)
}

// SettlesUnlisted reports that the exchange settles against the component
// reserves and the basket issuer, which come from the stored definition
// rather than the message. The dispatcher runs it alone.
func (m *BasketMsg) SettlesUnlisted() bool {
	return true
}
