package process

import (
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// InboxMsg accepts or rejects entries of one account's inbox.
type InboxMsg struct {
	Account otx.Address `json:"account"`
	// Accept and Reject name inbox entries by their number. An entry can
	// appear in only one of the two lists.
	Accept []int64 `json:"accept,omitempty"`
	Reject []int64 `json:"reject,omitempty"`
	// Statement speaks for the account. Every processed entry must be
	// claimed as cleared and accepted credits reflected in the balance.
	Statement statement.BalanceStatement `json:"statement"`
}

var _ otx.Msg = (*InboxMsg)(nil)

func (InboxMsg) Path() string {
	return "process/inbox"
}

func (InboxMsg) Disposition() otx.Disposition {
	return otx.OneShot
}

func (m *InboxMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *InboxMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *InboxMsg) Validate() error {
	var err error
	if verr := m.Account.Validate(); verr != nil {
		err = errors.AppendField(err, "Account", verr)
	}
	if len(m.Accept) == 0 && len(m.Reject) == 0 {
		err = errors.AppendField(err, "Accept", errors.Wrap(errors.ErrEmpty, "nothing to process"))
	}
	seen := make(map[int64]bool, len(m.Accept)+len(m.Reject))
	for _, n := range append(append([]int64{}, m.Accept...), m.Reject...) {
		if n <= 0 {
			err = errors.AppendField(err, "Accept", errors.ErrNumber)
		}
		if seen[n] {
			err = errors.AppendField(err, "Accept", errors.Wrapf(errors.ErrDuplicate, "entry %d", n))
		}
		seen[n] = true
	}
	if verr := m.Statement.Validate(); verr != nil {
		err = errors.AppendField(err, "Statement", verr)
	}
	if !m.Statement.Account.Equals(m.Account) {
		err = errors.AppendField(err, "Statement", errors.Wrap(errors.ErrInput, "statement for wrong account"))
	}
	return err
}

// InvolvedAccounts names the accounts the dispatcher must lock.
func (m *InboxMsg) InvolvedAccounts() []otx.Address {
	return []otx.Address{m.Account}
}

// SettlesUnlisted reports that inbox processing reaches state no listing
// can name in advance: the escrow, outbox and number ledger of whichever
// sender stands behind each pending entry. The dispatcher runs it alone.
func (m *InboxMsg) SettlesUnlisted() bool {
	return true
}

// MailboxMsg consumes notices and number grants from an identity's
// mailbox.
type MailboxMsg struct {
	// Accept names mailbox entries by their number.
	Accept []int64 `json:"accept"`
	// Statement speaks for the identity. The mailbox has no account.
	Statement statement.TransactionStatement `json:"statement"`
}

var _ otx.Msg = (*MailboxMsg)(nil)

func (MailboxMsg) Path() string {
	return "process/mailbox"
}

func (MailboxMsg) Disposition() otx.Disposition {
	return otx.OneShot
}

func (m *MailboxMsg) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *MailboxMsg) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, m)
}

func (m *MailboxMsg) Validate() error {
	var err error
	if len(m.Accept) == 0 {
		err = errors.AppendField(err, "Accept", errors.ErrEmpty)
	}
	seen := make(map[int64]bool, len(m.Accept))
	for _, n := range m.Accept {
		if n <= 0 {
			err = errors.AppendField(err, "Accept", errors.ErrNumber)
		}
		if seen[n] {
			err = errors.AppendField(err, "Accept", errors.Wrapf(errors.ErrDuplicate, "entry %d", n))
		}
		seen[n] = true
	}
	if verr := m.Statement.Validate(); verr != nil {
		err = errors.AppendField(err, "Statement", verr)
	}
	return err
}

// InvolvedRecords names the shared number sequence, which the grant
// confirmation notice draws from.
func (m *MailboxMsg) InvolvedRecords() []string {
	return []string{"numbers"}
}
