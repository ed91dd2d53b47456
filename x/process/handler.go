package process

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/nym"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// RegisterRoutes wires the inbox and mailbox handlers into the dispatcher
// router.
func RegisterRoutes(r otx.Registry, auth x.Authenticator, accounts account.Controller, ledgers ledger.Controller, nyms nym.Controller, verifier statement.Verifier, numbers ledger.NumberSource) {
	r.Handle(&InboxMsg{}, &inboxHandler{
		auth:     auth,
		accounts: accounts,
		ledgers:  ledgers,
		nyms:     nyms,
		verifier: verifier,
	})
	r.Handle(&MailboxMsg{}, &mailboxHandler{
		auth:     auth,
		ledgers:  ledgers,
		nyms:     nyms,
		verifier: verifier,
		numbers:  numbers,
	})
}

type inboxHandler struct {
	auth     x.Authenticator
	accounts account.Controller
	ledgers  ledger.Controller
	nyms     nym.Controller
	verifier statement.Verifier
}

var _ otx.Handler = (*inboxHandler)(nil)

func (h *inboxHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &otx.CheckResult{}, nil
}

func (h *inboxHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	msg, inbox, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	for _, n := range msg.Accept {
		e := inbox.Find(n)
		switch e.Kind {
		case ledger.PendingTransfer:
			escrow := account.ReserveAddress(account.ReserveTransfer, e.Amount.Ticker)
			if err := h.accounts.MoveCoins(db, escrow, msg.Account, e.Amount); err != nil {
				return nil, errors.Wrapf(err, "entry %d", n)
			}
			if err := h.settleTransfer(db, msg.Account, e); err != nil {
				return nil, err
			}
		case ledger.Voucher:
			if err := h.accounts.MoveCoins(db, e.From, msg.Account, e.Amount); err != nil {
				return nil, errors.Wrapf(err, "entry %d", n)
			}
			if err := h.ledgers.Remove(db, ledger.Inbox, msg.Account, n); err != nil {
				return nil, err
			}
		case ledger.Receipt:
			if err := h.ledgers.Remove(db, ledger.Inbox, msg.Account, n); err != nil {
				return nil, err
			}
			if e.ClosingNumber > 0 {
				acct, err := h.accounts.Account(db, msg.Account)
				if err != nil {
					return nil, err
				}
				if err := h.nyms.CloseIssued(db, acct.Owner, e.ClosingNumber); err != nil {
					return nil, errors.Wrapf(err, "entry %d", n)
				}
			}
		}
	}

	for _, n := range msg.Reject {
		e := inbox.Find(n)
		switch e.Kind {
		case ledger.PendingTransfer:
			// a rejected transfer bounces, the escrow returns to the
			// sender and the transfer resolves terminally
			escrow := account.ReserveAddress(account.ReserveTransfer, e.Amount.Ticker)
			if err := h.accounts.MoveCoins(db, escrow, e.From, e.Amount); err != nil {
				return nil, errors.Wrapf(err, "entry %d", n)
			}
			if err := h.settleTransfer(db, msg.Account, e); err != nil {
				return nil, err
			}
		case ledger.Receipt:
			// a disputed receipt leaves the inbox, its closing number
			// stays reserved until the dispute resolves elsewhere
			if err := h.ledgers.Remove(db, ledger.Inbox, msg.Account, n); err != nil {
				return nil, err
			}
		}
	}
	return &otx.DeliverResult{}, nil
}

// settleTransfer clears a pending transfer out of both mirrored ledgers and
// closes the sender's number.
func (h *inboxHandler) settleTransfer(db otx.KVStore, recipient otx.Address, e *ledger.Entry) error {
	if err := h.ledgers.Remove(db, ledger.Inbox, recipient, e.Number); err != nil {
		return err
	}
	if err := h.ledgers.Remove(db, ledger.Outbox, e.From, e.Number); err != nil {
		return err
	}
	sender, err := h.accounts.Account(db, e.From)
	if err != nil {
		return err
	}
	return h.nyms.CloseIssued(db, sender.Owner, e.Number)
}

// validate runs the read-only verification path shared by Check and
// Deliver. The returned ledger is the inbox as it stands before
// processing.
func (h *inboxHandler) validate(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*InboxMsg, *ledger.Ledger, error) {
	var msg InboxMsg
	if err := otx.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}

	acct, err := h.accounts.Account(db, msg.Account)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, acct.Owner) {
		return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "account owned by %s", acct.Owner)
	}
	if acct.Internal {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "internal account")
	}

	inbox, err := h.ledgers.Ledger(db, ledger.Inbox, msg.Account)
	if err != nil {
		return nil, nil, err
	}

	accepted := make(map[int64]bool, len(msg.Accept))
	for _, n := range msg.Accept {
		accepted[n] = true
	}

	delta := coin.Coin{Ticker: acct.Instrument}
	for _, n := range msg.Accept {
		e := inbox.Find(n)
		if e == nil {
			return nil, nil, errors.Wrapf(errors.ErrNotFound, "entry %d", n)
		}
		switch e.Kind {
		case ledger.PendingTransfer, ledger.Voucher:
			delta, err = delta.Add(e.Amount)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "entry %d", n)
			}
		case ledger.Receipt:
			if err := verifyGroup(inbox, e, accepted); err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, errors.Wrapf(errors.ErrState, "entry %d is a %s", n, e.Kind)
		}
	}
	for _, n := range msg.Reject {
		e := inbox.Find(n)
		if e == nil {
			return nil, nil, errors.Wrapf(errors.ErrNotFound, "entry %d", n)
		}
		switch e.Kind {
		case ledger.PendingTransfer:
		case ledger.Receipt:
			if err := verifyGroup(inbox, e, accepted); err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, errors.Wrapf(errors.ErrState, "entry %d is a %s", n, e.Kind)
		}
	}

	if err := verifyClearedSet(&msg); err != nil {
		return nil, nil, err
	}
	if err := h.verifier.VerifyBalanceStatement(db, &msg.Statement, delta); err != nil {
		return nil, nil, err
	}
	return &msg, inbox, nil
}

// verifyClearedSet requires the statement to clear exactly the processed
// entries. Every accepted or rejected entry leaves the inbox, so a
// statement claiming any of them as still present would verify against a
// hash this operation makes stale.
func verifyClearedSet(msg *InboxMsg) error {
	if len(msg.Statement.ClearedOutbox) != 0 {
		return errors.Wrap(errors.ErrStatement, "inbox processing clears no outbox entries")
	}
	processed := make(map[int64]bool, len(msg.Accept)+len(msg.Reject))
	for _, n := range msg.Accept {
		processed[n] = true
	}
	for _, n := range msg.Reject {
		processed[n] = true
	}
	cleared := make(map[int64]bool, len(msg.Statement.ClearedInbox))
	for _, n := range msg.Statement.ClearedInbox {
		if !processed[n] {
			return errors.Wrapf(errors.ErrStatement, "statement clears unprocessed entry %d", n)
		}
		cleared[n] = true
	}
	for n := range processed {
		if !cleared[n] {
			return errors.Wrapf(errors.ErrStatement, "statement keeps processed entry %d", n)
		}
	}
	return nil
}

// verifyGroup enforces all-or-nothing acceptance of a final receipt group.
// Receipts sharing a reference stand and fall together.
func verifyGroup(inbox *ledger.Ledger, e *ledger.Entry, accepted map[int64]bool) error {
	if e.Reference == 0 {
		return nil
	}
	for _, member := range inbox.Group(e.Reference) {
		if !accepted[member.Number] {
			return errors.Wrapf(errors.ErrState, "final receipt group %d accepted partially", e.Reference)
		}
	}
	return nil
}

type mailboxHandler struct {
	auth     x.Authenticator
	ledgers  ledger.Controller
	nyms     nym.Controller
	verifier statement.Verifier
	numbers  ledger.NumberSource
}

var _ otx.Handler = (*mailboxHandler)(nil)

func (h *mailboxHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &otx.CheckResult{}, nil
}

func (h *mailboxHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	msg, mailbox, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	owner := msg.Statement.Nym

	for _, n := range msg.Accept {
		e := mailbox.Find(n)
		if err := h.ledgers.Remove(db, ledger.Mailbox, owner, n); err != nil {
			return nil, err
		}
		if e.Kind != ledger.NumberGrant {
			continue
		}
		if err := h.nyms.AcceptIssuedNumbers(db, owner, e.Numbers); err != nil {
			return nil, errors.Wrapf(err, "entry %d", n)
		}
		// durable confirmation, in case the client misses the direct
		// reply
		number, err := h.numbers.Next(db)
		if err != nil {
			return nil, err
		}
		err = h.ledgers.Append(db, ledger.Mailbox, owner, ledger.Entry{
			Kind:      ledger.Notice,
			Number:    number,
			Reference: n,
			Success:   true,
			Memo:      "numbers accepted",
		})
		if err != nil {
			return nil, err
		}
	}
	return &otx.DeliverResult{}, nil
}

func (h *mailboxHandler) validate(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*MailboxMsg, *ledger.Ledger, error) {
	var msg MailboxMsg
	if err := otx.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}
	owner := msg.Statement.Nym
	if !h.auth.HasAddress(ctx, owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "statement for another nym")
	}

	mailbox, err := h.ledgers.Ledger(db, ledger.Mailbox, owner)
	if err != nil {
		return nil, nil, err
	}
	for _, n := range msg.Accept {
		e := mailbox.Find(n)
		if e == nil {
			return nil, nil, errors.Wrapf(errors.ErrNotFound, "entry %d", n)
		}
		switch e.Kind {
		case ledger.Notice, ledger.NumberGrant:
		default:
			return nil, nil, errors.Wrapf(errors.ErrState, "entry %d is a %s", n, e.Kind)
		}
	}

	// a fresh identity accepting its first grant has no number to spend,
	// the dispatcher lets those requests through without one
	var consuming []int64
	if main := otx.MainNumber(ctx); main > 0 {
		consuming = append(consuming, main)
	}
	if err := h.verifier.VerifyTransactionStatement(db, &msg.Statement, consuming); err != nil {
		return nil, nil, err
	}
	return &msg, mailbox, nil
}
