package funds

import (
	"encoding/json"
	"fmt"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
	"github.com/secureonelabs/opentxs-sub000/x/token"
)

// DepositMsg credits an account from exactly one attached instrument:
// either a cheque style instrument or a purse of cash tokens.
type DepositMsg struct {
	// Account receiving the deposit.
	Account otx.Address  `json:"account"`
	Cheque  *Cheque      `json:"cheque,omitempty"`
	Purse   *token.Purse `json:"purse,omitempty"`
	// Statement speaks for the depositor account. For a cheque
	// self-cancellation the claimed balance equals the current one.
	Statement statement.BalanceStatement `json:"statement"`
}

var _ otx.Msg = (*DepositMsg)(nil)

func (DepositMsg) Path() string {
	return "funds/deposit"
}

func (DepositMsg) Disposition() otx.Disposition {
	return otx.OneShot
}

func (m *DepositMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *DepositMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *DepositMsg) Validate() error {
	var err error
	if verr := m.Account.Validate(); verr != nil {
		err = errors.AppendField(err, "Account", verr)
	}
	switch {
	case m.Cheque == nil && m.Purse == nil:
		err = errors.AppendField(err, "Cheque", errors.Wrap(errors.ErrEmpty, "no instrument"))
	case m.Cheque != nil && m.Purse != nil:
		err = errors.AppendField(err, "Purse", errors.Wrap(errors.ErrInput, "more than one instrument"))
	case m.Cheque != nil:
		if verr := m.Cheque.Validate(); verr != nil {
			err = errors.AppendField(err, "Cheque", verr)
		}
	default:
		if verr := m.Purse.Validate(); verr != nil {
			err = errors.AppendField(err, "Purse", verr)
		}
	}
	if verr := m.Statement.Validate(); verr != nil {
		err = errors.AppendField(err, "Statement", verr)
	}
	if !m.Statement.Account.Equals(m.Account) {
		err = errors.AppendField(err, "Statement", errors.Wrap(errors.ErrInput, "statement for wrong account"))
	}
	return err
}

// InvolvedAccounts names the accounts the dispatcher must lock. A purse
// deposit settles against the mint reserve of its instrument.
func (m *DepositMsg) InvolvedAccounts() []otx.Address {
	ids := []otx.Address{m.Account}
	if m.Cheque != nil {
		ids = append(ids, m.Cheque.Account)
	}
	if m.Purse != nil && len(m.Purse.Tokens) > 0 {
		ids = append(ids, account.ReserveAddress(account.ReserveMint, m.Purse.Tokens[0].Instrument))
	}
	return ids
}

// InvolvedRecords names the spent records the deposit may write, so two
// presentations of the same instrument serialize.
func (m *DepositMsg) InvolvedRecords() []string {
	switch {
	case m.Cheque != nil && m.Cheque.Voucher:
		return []string{fmt.Sprintf("voucher/%d", m.Cheque.Number)}
	case m.Purse != nil:
		records := make([]string, 0, len(m.Purse.Tokens))
		for i := range m.Purse.Tokens {
			records = append(records, "token/"+m.Purse.Tokens[i].ID.String())
		}
		return records
	}
	return nil
}

// PartyNyms names the cheque writer, whose number ledger the clearing
// consumes. Vouchers have no writer.
func (m *DepositMsg) PartyNyms() []otx.Address {
	if m.Cheque == nil || m.Cheque.Voucher {
		return nil
	}
	return []otx.Address{m.Cheque.WriterNym}
}

// WithdrawMsg debits an account in exchange for a voucher or for freshly
// minted cash tokens.
type WithdrawMsg struct {
	// Account funding the withdrawal.
	Account otx.Address `json:"account"`
	// VoucherAmount requests a voucher over the given amount. Unset for
	// cash withdrawals.
	VoucherAmount *coin.Coin `json:"voucher_amount,omitempty"`
	// Purse carries the unsigned token templates to mint. Unset for
	// voucher withdrawals.
	Purse     *token.Purse               `json:"purse,omitempty"`
	Statement statement.BalanceStatement `json:"statement"`
}

var _ otx.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string {
	return "funds/withdraw"
}

func (WithdrawMsg) Disposition() otx.Disposition {
	return otx.OneShot
}

func (m *WithdrawMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *WithdrawMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *WithdrawMsg) Validate() error {
	var err error
	if verr := m.Account.Validate(); verr != nil {
		err = errors.AppendField(err, "Account", verr)
	}
	switch {
	case m.VoucherAmount == nil && m.Purse == nil:
		err = errors.AppendField(err, "VoucherAmount", errors.Wrap(errors.ErrEmpty, "nothing to withdraw"))
	case m.VoucherAmount != nil && m.Purse != nil:
		err = errors.AppendField(err, "Purse", errors.Wrap(errors.ErrInput, "more than one instrument"))
	case m.VoucherAmount != nil:
		if verr := m.VoucherAmount.Validate(); verr != nil {
			err = errors.AppendField(err, "VoucherAmount", verr)
		} else if !m.VoucherAmount.IsPositive() {
			err = errors.AppendField(err, "VoucherAmount", errors.ErrAmount)
		}
	default:
		if verr := m.Purse.Validate(); verr != nil {
			err = errors.AppendField(err, "Purse", verr)
		}
		for i := range m.Purse.Tokens {
			if len(m.Purse.Tokens[i].Signature) != 0 {
				err = errors.AppendField(err, "Purse", errors.Wrapf(errors.ErrInput, "token #%d already signed", i))
			}
		}
	}
	if verr := m.Statement.Validate(); verr != nil {
		err = errors.AppendField(err, "Statement", verr)
	}
	if !m.Statement.Account.Equals(m.Account) {
		err = errors.AppendField(err, "Statement", errors.Wrap(errors.ErrInput, "statement for wrong account"))
	}
	return err
}

// InvolvedAccounts names the accounts the dispatcher must lock, the
// backing reserve included.
func (m *WithdrawMsg) InvolvedAccounts() []otx.Address {
	ids := []otx.Address{m.Account}
	if m.VoucherAmount != nil {
		ids = append(ids, account.ReserveAddress(account.ReserveVoucher, m.VoucherAmount.Ticker))
	}
	if m.Purse != nil && len(m.Purse.Tokens) > 0 {
		ids = append(ids, account.ReserveAddress(account.ReserveMint, m.Purse.Tokens[0].Instrument))
	}
	return ids
}

// InvolvedRecords names the shared number sequence for voucher
// withdrawals, which stamp the voucher with a fresh server number.
func (m *WithdrawMsg) InvolvedRecords() []string {
	if m.VoucherAmount != nil {
		return []string{"numbers"}
	}
	return nil
}
