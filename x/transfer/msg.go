package transfer

import (
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// SendMsg moves an amount from the source account into transfer escrow and
// a pending record into the destination's inbox.
type SendMsg struct {
	Source      otx.Address `json:"source"`
	Destination otx.Address `json:"destination"`
	Amount      coin.Coin   `json:"amount"`
	// Statement speaks for the source account. The claimed balance
	// reflects the debit, the claimed hashes the ledgers before this
	// operation's outbox record is appended.
	Statement statement.BalanceStatement `json:"statement"`
	Memo      string                     `json:"memo,omitempty"`
}

var _ otx.Msg = (*SendMsg)(nil)

func (SendMsg) Path() string {
	return "transfer/send"
}

func (SendMsg) Disposition() otx.Disposition {
	return otx.LongLived
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *SendMsg) Validate() error {
	var err error
	if verr := m.Source.Validate(); verr != nil {
		err = errors.AppendField(err, "Source", verr)
	}
	if verr := m.Destination.Validate(); verr != nil {
		err = errors.AppendField(err, "Destination", verr)
	}
	if m.Source.Equals(m.Destination) {
		err = errors.AppendField(err, "Destination", errors.Wrap(errors.ErrInput, "transfer to self"))
	}
	if verr := m.Amount.Validate(); verr != nil {
		err = errors.AppendField(err, "Amount", verr)
	} else if !m.Amount.IsPositive() {
		err = errors.AppendField(err, "Amount", errors.ErrAmount)
	}
	if verr := m.Statement.Validate(); verr != nil {
		err = errors.AppendField(err, "Statement", verr)
	}
	if !m.Statement.Account.Equals(m.Source) {
		err = errors.AppendField(err, "Statement", errors.Wrap(errors.ErrInput, "statement for wrong account"))
	}
	if len(m.Memo) > 128 {
		err = errors.AppendField(err, "Memo", errors.ErrInput)
	}
	return err
}

// InvolvedAccounts names the accounts the dispatcher must lock, the
// escrow reserve included since the pending amount lands there.
func (m *SendMsg) InvolvedAccounts() []otx.Address {
	return []otx.Address{
		m.Source,
		m.Destination,
		account.ReserveAddress(account.ReserveTransfer, m.Amount.Ticker),
	}
}
