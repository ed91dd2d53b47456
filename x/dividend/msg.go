package dividend

import (
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// PayMsg pays a dividend per share of an asset instrument out of the
// issuer's funds account.
type PayMsg struct {
	// Instrument is the asset the dividend is paid on. The signer must
	// be its registered issuer.
	Instrument string `json:"instrument"`
	// SharesAccount is the issuer account whose negative balance records
	// the shares outstanding.
	SharesAccount otx.Address `json:"shares_account"`
	// PayoutAccount funds the payout.
	PayoutAccount otx.Address `json:"payout_account"`
	// PerShare is the payout per share, in the payout instrument.
	PerShare coin.Coin `json:"per_share"`
	// Statement speaks for the payout account with the full payout
	// debited.
	Statement statement.BalanceStatement `json:"statement"`
}

var _ otx.Msg = (*PayMsg)(nil)

func (PayMsg) Path() string {
	return "dividend/pay"
}

func (PayMsg) Disposition() otx.Disposition {
	return otx.OneShot
}

func (m *PayMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *PayMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *PayMsg) Validate() error {
	var err error
	if !coin.IsCC(m.Instrument) {
		err = errors.AppendField(err, "Instrument", errors.ErrInput)
	}
	if verr := m.SharesAccount.Validate(); verr != nil {
		err = errors.AppendField(err, "SharesAccount", verr)
	}
	if verr := m.PayoutAccount.Validate(); verr != nil {
		err = errors.AppendField(err, "PayoutAccount", verr)
	}
	if verr := m.PerShare.Validate(); verr != nil {
		err = errors.AppendField(err, "PerShare", verr)
	} else if !m.PerShare.IsPositive() {
		err = errors.AppendField(err, "PerShare", errors.ErrAmount)
	}
	if verr := m.Statement.Validate(); verr != nil {
		err = errors.AppendField(err, "Statement", verr)
	}
	if !m.Statement.Account.Equals(m.PayoutAccount) {
		err = errors.AppendField(err, "Statement", errors.Wrap(errors.ErrInput, "statement for wrong account"))
	}
	return err
}

// InvolvedAccounts names the accounts the dispatcher must lock.
func (m *PayMsg) InvolvedAccounts() []otx.Address {
	return []otx.Address{m.PayoutAccount, m.SharesAccount}
}

// SettlesUnlisted reports that the payout fans out over every holder of
// the shares instrument, a set only the store knows. The dispatcher runs
// it alone.
func (m *PayMsg) SettlesUnlisted() bool {
	return true
}
