package recurring

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/cron"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/nym"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// RegisterRoutes wires the recurring item handlers into the dispatcher
// router.
func RegisterRoutes(r otx.Registry, auth x.Authenticator, accounts account.Controller, ledgers ledger.Controller, nyms nym.Controller, verifier statement.Verifier, scheduler cron.Scheduler, numbers ledger.NumberSource) {
	base := submitHandler{
		auth:      auth,
		accounts:  accounts,
		ledgers:   ledgers,
		nyms:      nyms,
		verifier:  verifier,
		scheduler: scheduler,
		numbers:   numbers,
	}

	offer := base
	offer.load = func(tx otx.Tx) (*Submission, error) {
		var msg OfferMsg
		if err := otx.LoadMsg(tx, &msg); err != nil {
			return nil, err
		}
		return msg.body(), nil
	}
	r.Handle(&OfferMsg{}, &offer)

	plan := base
	plan.load = func(tx otx.Tx) (*Submission, error) {
		var msg PlanMsg
		if err := otx.LoadMsg(tx, &msg); err != nil {
			return nil, err
		}
		return msg.body(), nil
	}
	r.Handle(&PlanMsg{}, &plan)

	contract := base
	contract.load = func(tx otx.Tx) (*Submission, error) {
		var msg ContractMsg
		if err := otx.LoadMsg(tx, &msg); err != nil {
			return nil, err
		}
		return msg.body(), nil
	}
	r.Handle(&ContractMsg{}, &contract)

	r.Handle(&CancelMsg{}, &cancelHandler{
		auth:      auth,
		ledgers:   ledgers,
		nyms:      nyms,
		verifier:  verifier,
		scheduler: scheduler,
		numbers:   numbers,
	})
}

type submitHandler struct {
	auth      x.Authenticator
	accounts  account.Controller
	ledgers   ledger.Controller
	nyms      nym.Controller
	verifier  statement.Verifier
	scheduler cron.Scheduler
	numbers   ledger.NumberSource

	// load extracts the kind-specific message and hands back the shared
	// submission body.
	load func(otx.Tx) (*Submission, error)
}

var _ otx.Handler = (*submitHandler)(nil)

func (h *submitHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &otx.CheckResult{}, nil
}

func (h *submitHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	sub, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	item := &sub.Item
	main := otx.MainNumber(ctx)

	// every committed number leaves available; the dispatcher already
	// consumed the submitter's opening number
	for i := range item.Parties {
		p := &item.Parties[i]
		for _, n := range p.Numbers() {
			if n == main && p.Nym.Equals(sub.Statement.Nym) {
				continue
			}
			if err := h.nyms.ConsumeAvailable(db, p.Nym, n); err != nil {
				return nil, errors.Wrapf(err, "party %s", p.Nym)
			}
		}
		if err := h.nyms.OpenCronItem(db, p.Nym, p.OpeningNumber); err != nil {
			return nil, errors.Wrapf(err, "party %s", p.Nym)
		}
	}

	if err := h.scheduler.AddCronItem(db, item); err != nil {
		return nil, errors.Wrapf(errors.ErrCollaborator, "scheduler refused item %d: %s", item.OpeningNumber, err)
	}

	for i := range item.Parties {
		if err := h.notify(db, item.Parties[i].Nym, item.OpeningNumber, string(item.Kind)+" accepted"); err != nil {
			return nil, err
		}
	}
	return &otx.DeliverResult{}, nil
}

func (h *submitHandler) notify(db otx.KVStore, to otx.Address, reference int64, memo string) error {
	number, err := h.numbers.Next(db)
	if err != nil {
		return err
	}
	return h.ledgers.Append(db, ledger.Mailbox, to, ledger.Entry{
		Kind:      ledger.Notice,
		Number:    number,
		Reference: reference,
		Success:   true,
		Memo:      memo,
	})
}

// validate runs the read-only verification path shared by Check and
// Deliver.
func (h *submitHandler) validate(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*Submission, error) {
	sub, err := h.load(tx)
	if err != nil {
		return nil, err
	}
	item := &sub.Item
	main := otx.MainNumber(ctx)

	submitter := item.Party(sub.Statement.Nym)
	if submitter == nil || submitter.OpeningNumber != item.OpeningNumber {
		return nil, errors.Wrap(errors.ErrUnauthorized, "statement nym does not open the item")
	}
	if item.OpeningNumber != main {
		return nil, errors.Wrapf(errors.ErrNumber, "item opened by %d, notarization uses %d", item.OpeningNumber, main)
	}
	if !h.auth.HasAddress(ctx, submitter.Nym) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "submission by %s", submitter.Nym)
	}

	signed := item.SigningBytes()
	for i := range item.Parties {
		p := &item.Parties[i]
		l, err := h.nyms.Ledger(db, p.Nym)
		if err != nil {
			return nil, errors.Wrapf(err, "party %s", p.Nym)
		}
		if !l.Pubkey.Verify(signed, p.Signature) {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "party %s signature", p.Nym)
		}
		for _, id := range p.Accounts {
			a, err := h.accounts.Account(db, id)
			if err != nil {
				return nil, errors.Wrapf(err, "party %s", p.Nym)
			}
			if a.Internal || !a.Owner.Equals(p.Nym) {
				return nil, errors.Wrapf(errors.ErrUnauthorized, "account %s of party %s", id, p.Nym)
			}
		}
		for _, n := range p.Numbers() {
			if n == main && p.Nym.Equals(submitter.Nym) {
				// consumed by the notarization in flight, but it must
				// still be on the party's books
				switch issued, err := h.nyms.IsIssued(db, p.Nym, n); {
				case err != nil:
					return nil, err
				case !issued:
					return nil, errors.Wrapf(errors.ErrNumber, "number %d of party %s", n, p.Nym)
				}
				continue
			}
			switch available, err := h.nyms.IsAvailable(db, p.Nym, n); {
			case err != nil:
				return nil, err
			case !available:
				return nil, errors.Wrapf(errors.ErrNumber, "number %d of party %s", n, p.Nym)
			}
		}
	}

	if err := h.verifier.VerifyTransactionStatement(db, &sub.Statement, submitter.Numbers()); err != nil {
		return nil, err
	}
	return sub, nil
}

type cancelHandler struct {
	auth      x.Authenticator
	ledgers   ledger.Controller
	nyms      nym.Controller
	verifier  statement.Verifier
	scheduler cron.Scheduler
	numbers   ledger.NumberSource
}

var _ otx.Handler = (*cancelHandler)(nil)

func (h *cancelHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &otx.CheckResult{}, nil
}

func (h *cancelHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	item, err := h.scheduler.GetItemByOpeningNumber(db, msg.OpeningNumber)
	if err != nil {
		return nil, err
	}
	if err := h.scheduler.RemoveCronItem(db, msg.OpeningNumber, msg.Statement.Nym); err != nil {
		return nil, errors.Wrapf(errors.ErrCollaborator, "scheduler: %s", err)
	}

	// opening numbers close with the item, closing numbers come back since
	// no final receipt will ever need them
	for i := range item.Parties {
		p := &item.Parties[i]
		if err := h.nyms.CloseIssued(db, p.Nym, p.OpeningNumber); err != nil {
			return nil, errors.Wrapf(err, "party %s", p.Nym)
		}
		for _, n := range p.ClosingNumbers {
			if err := h.nyms.ReturnAvailable(db, p.Nym, n); err != nil {
				return nil, errors.Wrapf(err, "party %s", p.Nym)
			}
		}
	}

	for i := range item.Parties {
		number, err := h.numbers.Next(db)
		if err != nil {
			return nil, err
		}
		err = h.ledgers.Append(db, ledger.Mailbox, item.Parties[i].Nym, ledger.Entry{
			Kind:      ledger.Notice,
			Number:    number,
			Reference: item.OpeningNumber,
			Success:   true,
			Memo:      string(item.Kind) + " cancelled",
		})
		if err != nil {
			return nil, err
		}
	}
	return &otx.DeliverResult{}, nil
}

func (h *cancelHandler) validate(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*CancelMsg, error) {
	var msg CancelMsg
	if err := otx.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Statement.Nym) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "statement for another nym")
	}
	item, err := h.scheduler.GetItemByOpeningNumber(db, msg.OpeningNumber)
	if err != nil {
		return nil, err
	}
	if item.Party(msg.Statement.Nym) == nil {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not a party of item %d", msg.Statement.Nym, msg.OpeningNumber)
	}

	consuming := []int64{otx.MainNumber(ctx)}
	if err := h.verifier.VerifyTransactionStatement(db, &msg.Statement, consuming); err != nil {
		return nil, err
	}
	return &msg, nil
}
