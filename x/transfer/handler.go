package transfer

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// RegisterRoutes wires the transfer handler into the dispatcher router.
func RegisterRoutes(r otx.Registry, auth x.Authenticator, accounts account.Controller, ledgers ledger.Controller, verifier statement.Verifier) {
	r.Handle(&SendMsg{}, &sendHandler{
		auth:     auth,
		accounts: accounts,
		ledgers:  ledgers,
		verifier: verifier,
	})
}

type sendHandler struct {
	auth     x.Authenticator
	accounts account.Controller
	ledgers  ledger.Controller
	verifier statement.Verifier
}

var _ otx.Handler = (*sendHandler)(nil)

func (h *sendHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &otx.CheckResult{}, nil
}

func (h *sendHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	escrow, err := h.accounts.EnsureReserve(db, account.ReserveTransfer, msg.Amount.Ticker)
	if err != nil {
		return nil, err
	}
	if err := h.accounts.MoveCoins(db, msg.Source, escrow, msg.Amount); err != nil {
		return nil, err
	}

	number := otx.MainNumber(ctx)
	pending := ledger.Entry{
		Kind:   ledger.PendingTransfer,
		Number: number,
		From:   msg.Source,
		To:     msg.Destination,
		Amount: msg.Amount,
		Memo:   msg.Memo,
	}
	if err := h.ledgers.Append(db, ledger.Inbox, msg.Destination, pending); err != nil {
		return nil, err
	}
	mirror := pending
	mirror.Kind = ledger.TransferSent
	if err := h.ledgers.Append(db, ledger.Outbox, msg.Source, mirror); err != nil {
		return nil, err
	}
	return &otx.DeliverResult{}, nil
}

// validate runs the full read-only verification path shared by Check and
// Deliver.
func (h *sendHandler) validate(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := otx.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}

	src, err := h.accounts.Account(db, msg.Source)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, src.Owner) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "source owned by %s", src.Owner)
	}
	if src.Internal {
		return nil, errors.Wrap(errors.ErrUnauthorized, "internal source account")
	}
	dest, err := h.accounts.Account(db, msg.Destination)
	if err != nil {
		return nil, err
	}
	if dest.Internal {
		return nil, errors.Wrap(errors.ErrUnauthorized, "internal destination account")
	}
	if src.Instrument != msg.Amount.Ticker || dest.Instrument != msg.Amount.Ticker {
		return nil, errors.Wrapf(errors.ErrType, "transfer of %s between %s and %s accounts",
			msg.Amount.Ticker, src.Instrument, dest.Instrument)
	}

	if err := h.verifier.VerifyBalanceStatement(db, &msg.Statement, msg.Amount.Negative()); err != nil {
		return nil, err
	}
	return &msg, nil
}
