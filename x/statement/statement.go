package statement

import (
	"bytes"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/nym"
)

// BalanceStatement is the client's claim of what one account and its
// ledgers look like after the requested operation. The envelope signature
// of the carrying transaction covers it.
type BalanceStatement struct {
	// Account the statement speaks for.
	Account otx.Address `json:"account"`
	// NewBalance is the claimed post-operation balance.
	NewBalance coin.Coin `json:"new_balance"`
	// InboxHash and OutboxHash are the claimed post-operation content
	// hashes, after the cleared entries are removed.
	InboxHash  []byte `json:"inbox_hash"`
	OutboxHash []byte `json:"outbox_hash"`
	// ClearedInbox and ClearedOutbox name the entry numbers this
	// operation claims to clear out of each ledger.
	ClearedInbox  []int64 `json:"cleared_inbox,omitempty"`
	ClearedOutbox []int64 `json:"cleared_outbox,omitempty"`
}

func (s *BalanceStatement) Validate() error {
	var err error
	if verr := s.Account.Validate(); verr != nil {
		err = errors.AppendField(err, "Account", verr)
	}
	if verr := s.NewBalance.Validate(); verr != nil {
		err = errors.AppendField(err, "NewBalance", verr)
	}
	if len(s.InboxHash) == 0 {
		err = errors.AppendField(err, "InboxHash", errors.ErrEmpty)
	}
	if len(s.OutboxHash) == 0 {
		err = errors.AppendField(err, "OutboxHash", errors.ErrEmpty)
	}
	return err
}

// TransactionStatement is the account-less analogue, used by recurring
// item and notice operations. It claims only the identity's number-set
// state.
type TransactionStatement struct {
	// Nym is the identity the statement speaks for.
	Nym otx.Address `json:"nym"`
	// NumbersHash is the claimed hash of the post-operation number sets.
	NumbersHash []byte `json:"numbers_hash"`
}

func (s *TransactionStatement) Validate() error {
	var err error
	if verr := s.Nym.Validate(); verr != nil {
		err = errors.AppendField(err, "Nym", verr)
	}
	if len(s.NumbersHash) == 0 {
		err = errors.AppendField(err, "NumbersHash", errors.ErrEmpty)
	}
	return err
}

// Verifier recomputes expected state from the controllers and compares the
// client's statement exactly. All methods are read only.
type Verifier struct {
	accounts account.Controller
	ledgers  ledger.Controller
	nyms     nym.Controller
}

func NewVerifier(accounts account.Controller, ledgers ledger.Controller, nyms nym.Controller) Verifier {
	return Verifier{accounts: accounts, ledgers: ledgers, nyms: nyms}
}

// VerifyBalanceStatement checks the claimed post-operation balance and
// ledger hashes against the current account state plus the operation's
// balance delta. The match must be exact, both in amount and hash bytes.
func (v Verifier) VerifyBalanceStatement(db otx.ReadOnlyKVStore, s *BalanceStatement, delta coin.Coin) error {
	if err := s.Validate(); err != nil {
		return err
	}
	acct, err := v.accounts.Account(db, s.Account)
	if err != nil {
		return err
	}
	expected := acct.Balance
	if !delta.IsZero() {
		expected, err = acct.Balance.Add(delta)
		if err != nil {
			return err
		}
	}
	if !expected.Equals(s.NewBalance) {
		return errors.Wrapf(errors.ErrStatement, "claimed balance %s, expected %s", s.NewBalance, expected)
	}

	if err := v.verifyLedgerHash(db, ledger.Inbox, s.Account, s.ClearedInbox, s.InboxHash); err != nil {
		return err
	}
	return v.verifyLedgerHash(db, ledger.Outbox, s.Account, s.ClearedOutbox, s.OutboxHash)
}

func (v Verifier) verifyLedgerHash(db otx.ReadOnlyKVStore, kind ledger.Kind, owner otx.Address, cleared []int64, claimed []byte) error {
	l, err := v.ledgers.Ledger(db, kind, owner)
	if err != nil {
		return err
	}
	remaining := ledger.Ledger{Entries: make([]ledger.Entry, 0, len(l.Entries))}
	for _, e := range l.Entries {
		if !containsNumber(cleared, e.Number) {
			remaining.Entries = append(remaining.Entries, e)
		}
	}
	// clearing an entry that is not there is a desync, not a no-op
	if len(l.Entries)-len(remaining.Entries) != len(cleared) {
		return errors.Wrapf(errors.ErrStatement, "cleared entries missing from %s", kind)
	}
	if !bytes.Equal(remaining.Hash(), claimed) {
		return errors.Wrapf(errors.ErrStatement, "%s hash mismatch", kind)
	}
	return nil
}

// VerifyTransactionStatement checks the claimed number-set hash against
// the identity's ledger with the given numbers taken out of available, the
// state the operation will leave behind.
func (v Verifier) VerifyTransactionStatement(db otx.ReadOnlyKVStore, s *TransactionStatement, consuming []int64) error {
	if err := s.Validate(); err != nil {
		return err
	}
	l, err := v.nyms.Ledger(db, s.Nym)
	if err != nil {
		return err
	}
	projected := l.Copy()
	for _, n := range consuming {
		if err := consumeProjected(projected, n); err != nil {
			return err
		}
	}
	if !bytes.Equal(projected.NumbersHash(), s.NumbersHash) {
		return errors.Wrap(errors.ErrStatement, "number set hash mismatch")
	}
	return nil
}

// consumeProjected removes n from the projected available set. A number
// that is issued but no longer available was already consumed by the
// notarization in flight, so the projection is a no-op for it.
func consumeProjected(l *nym.Ledger, n int64) error {
	for i, have := range l.Available {
		if have == n {
			l.Available = append(l.Available[:i], l.Available[i+1:]...)
			return nil
		}
	}
	for _, have := range l.Issued {
		if have == n {
			return nil
		}
	}
	return errors.Wrapf(errors.ErrNumber, "number %d not available", n)
}

func containsNumber(set []int64, n int64) bool {
	for _, have := range set {
		if have == n {
			return true
		}
	}
	return false
}
