package funds

import (
	"encoding/json"
	"time"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/orm"
	"github.com/secureonelabs/opentxs-sub000/x"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/nym"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
	"github.com/secureonelabs/opentxs-sub000/x/token"
)

// voucherValidity is how long a freshly drawn voucher stays redeemable.
const voucherValidity = 180 * 24 * time.Hour

// maxTokenValidity caps how far into the future a minted cash token may
// stay redeemable. The client proposes the series window, the mint owns
// the policy.
const maxTokenValidity = 366 * 24 * time.Hour

// RegisterRoutes wires the deposit and withdrawal handlers into the
// dispatcher router. serverKey signs vouchers and verifies presented ones,
// numbers stamps every drawn voucher with a fresh server number.
func RegisterRoutes(r otx.Registry, auth x.Authenticator, accounts account.Controller, nyms nym.Controller, verifier statement.Verifier, adapter token.Adapter, numbers ledger.NumberSource, serverKey *crypto.PrivateKey) {
	r.Handle(&DepositMsg{}, &depositHandler{
		auth:      auth,
		accounts:  accounts,
		nyms:      nyms,
		verifier:  verifier,
		adapter:   adapter,
		redeemed:  orm.NewModelBucket("redeemed"),
		serverKey: serverKey,
	})
	r.Handle(&WithdrawMsg{}, &withdrawHandler{
		auth:      auth,
		accounts:  accounts,
		verifier:  verifier,
		adapter:   adapter,
		numbers:   numbers,
		serverKey: serverKey,
	})
}

type depositHandler struct {
	auth      x.Authenticator
	accounts  account.Controller
	nyms      nym.Controller
	verifier  statement.Verifier
	adapter   token.Adapter
	redeemed  orm.ModelBucket
	serverKey *crypto.PrivateKey
}

var _ otx.Handler = (*depositHandler)(nil)

func (h *depositHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &otx.CheckResult{}, nil
}

func (h *depositHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	msg, selfCancel, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	switch {
	case msg.Cheque != nil && selfCancel:
		// cancelling an own cheque only burns its number
		if err := h.nyms.CloseIssued(db, msg.Cheque.WriterNym, msg.Cheque.Number); err != nil {
			return nil, err
		}
	case msg.Cheque != nil && msg.Cheque.Voucher:
		if err := h.accounts.MoveCoins(db, msg.Cheque.Account, msg.Account, msg.Cheque.Amount); err != nil {
			return nil, err
		}
		record := redeemedVoucher{RedeemedAt: otx.AsUnixTime(otx.Now(ctx))}
		if err := h.redeemed.Put(db, voucherKey(msg.Cheque.Number), &record); err != nil {
			return nil, err
		}
	case msg.Cheque != nil:
		if err := h.accounts.MoveCoins(db, msg.Cheque.Account, msg.Account, msg.Cheque.Amount); err != nil {
			return nil, err
		}
		if err := h.nyms.ConsumeIssued(db, msg.Cheque.WriterNym, msg.Cheque.Number); err != nil {
			return nil, err
		}
	default:
		// first token failure aborts, the savepoint discards prior legs
		for i := range msg.Purse.Tokens {
			if err := h.adapter.Redeem(ctx, db, msg.Account, &msg.Purse.Tokens[i]); err != nil {
				return nil, errors.Wrapf(err, "token #%d", i)
			}
		}
	}
	return &otx.DeliverResult{}, nil
}

func (h *depositHandler) validate(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*DepositMsg, bool, error) {
	var msg DepositMsg
	if err := otx.LoadMsg(tx, &msg); err != nil {
		return nil, false, err
	}

	acct, err := h.accounts.Account(db, msg.Account)
	if err != nil {
		return nil, false, err
	}
	if !h.auth.HasAddress(ctx, acct.Owner) {
		return nil, false, errors.Wrapf(errors.ErrUnauthorized, "account owned by %s", acct.Owner)
	}
	if acct.Internal {
		return nil, false, errors.Wrap(errors.ErrUnauthorized, "internal account")
	}

	var (
		delta      coin.Coin
		selfCancel bool
	)
	switch {
	case msg.Cheque != nil:
		selfCancel, err = h.validateCheque(ctx, db, acct, msg.Cheque)
		if err != nil {
			return nil, false, err
		}
		if !selfCancel {
			delta = msg.Cheque.Amount
		}
	default:
		if err := h.validatePurse(ctx, db, acct, msg.Purse); err != nil {
			return nil, false, err
		}
		delta, err = msg.Purse.Total()
		if err != nil {
			return nil, false, err
		}
	}

	if err := h.verifier.VerifyBalanceStatement(db, &msg.Statement, delta); err != nil {
		return nil, false, err
	}
	return &msg, selfCancel, nil
}

func (h *depositHandler) validateCheque(ctx otx.Context, db otx.KVStore, depositor *account.Account, c *Cheque) (selfCancel bool, err error) {
	if c.Amount.Ticker != depositor.Instrument {
		return false, errors.Wrapf(errors.ErrType, "cheque over %s into %s account", c.Amount.Ticker, depositor.Instrument)
	}
	if otx.IsExpired(ctx, c.ExpiresAt) {
		return false, errors.Wrap(errors.ErrExpired, "cheque expired")
	}

	if c.Voucher {
		if c.Number <= 0 {
			return false, errors.Wrap(errors.ErrNumber, "voucher without a server number")
		}
		if !h.serverKey.PublicKey().Verify(c.SigningBytes(), c.Signature) {
			return false, errors.Wrap(errors.ErrUnauthorized, "bad voucher signature")
		}
		reserve := account.ReserveAddress(account.ReserveVoucher, c.Amount.Ticker)
		if !c.Account.Equals(reserve) {
			return false, errors.Wrap(errors.ErrUnauthorized, "voucher not drawn on the reserve")
		}
		switch redeemed, err := h.redeemed.Has(db, voucherKey(c.Number)); {
		case err != nil:
			return false, err
		case redeemed:
			return false, errors.Wrapf(errors.ErrDuplicate, "voucher %d already redeemed", c.Number)
		}
		return false, nil
	}

	writer, err := h.nyms.Ledger(db, c.WriterNym)
	if err != nil {
		return false, err
	}
	if !writer.Pubkey.Verify(c.SigningBytes(), c.Signature) {
		return false, errors.Wrap(errors.ErrUnauthorized, "bad cheque signature")
	}
	switch issued, err := h.nyms.IsIssued(db, c.WriterNym, c.Number); {
	case err != nil:
		return false, err
	case !issued:
		return false, errors.Wrapf(errors.ErrNumber, "cheque number %d not issued", c.Number)
	}
	drawn, err := h.accounts.Account(db, c.Account)
	if err != nil {
		return false, err
	}
	if !drawn.Owner.Equals(c.WriterNym) {
		return false, errors.Wrap(errors.ErrUnauthorized, "cheque drawn on a foreign account")
	}
	// the writer depositing into their own account cancels the cheque
	return depositor.Owner.Equals(c.WriterNym), nil
}

func (h *depositHandler) validatePurse(ctx otx.Context, db otx.KVStore, depositor *account.Account, p *token.Purse) error {
	for i := range p.Tokens {
		t := &p.Tokens[i]
		if t.Instrument != depositor.Instrument {
			return errors.Wrapf(errors.ErrType, "token #%d instrument", i)
		}
		switch spent, err := h.adapter.IsSpent(db, t); {
		case err != nil:
			return err
		case spent:
			return errors.Wrapf(errors.ErrDuplicate, "token #%d already spent", i)
		}
	}
	return nil
}

type withdrawHandler struct {
	auth      x.Authenticator
	accounts  account.Controller
	verifier  statement.Verifier
	adapter   token.Adapter
	numbers   ledger.NumberSource
	serverKey *crypto.PrivateKey
}

var _ otx.Handler = (*withdrawHandler)(nil)

func (h *withdrawHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &otx.CheckResult{}, nil
}

func (h *withdrawHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if msg.VoucherAmount != nil {
		return h.deliverVoucher(ctx, db, msg)
	}
	return h.deliverCash(db, msg)
}

func (h *withdrawHandler) deliverVoucher(ctx otx.Context, db otx.KVStore, msg *WithdrawMsg) (*otx.DeliverResult, error) {
	amount := *msg.VoucherAmount
	reserve, err := h.accounts.EnsureReserve(db, account.ReserveVoucher, amount.Ticker)
	if err != nil {
		return nil, err
	}
	if err := h.accounts.MoveCoins(db, msg.Account, reserve, amount); err != nil {
		return nil, err
	}

	number, err := h.numbers.Next(db)
	if err != nil {
		return nil, err
	}
	voucher := Cheque{
		Number:    number,
		Account:   reserve,
		Amount:    amount,
		ExpiresAt: otx.AsUnixTime(otx.Now(ctx).Add(voucherValidity)),
		Voucher:   true,
	}
	sig, err := h.serverKey.Sign(voucher.SigningBytes())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCollaborator, err.Error())
	}
	voucher.Signature = sig

	data, err := json.Marshal(&voucher)
	if err != nil {
		return nil, err
	}
	return &otx.DeliverResult{Data: data}, nil
}

func (h *withdrawHandler) deliverCash(db otx.KVStore, msg *WithdrawMsg) (*otx.DeliverResult, error) {
	// tokens are minted one at a time; the first failure aborts the
	// whole bundle through the savepoint
	signed := token.Purse{Tokens: make([]token.Token, len(msg.Purse.Tokens))}
	copy(signed.Tokens, msg.Purse.Tokens)
	for i := range signed.Tokens {
		if err := h.adapter.Issue(db, msg.Account, &signed.Tokens[i]); err != nil {
			return nil, errors.Wrapf(err, "token #%d", i)
		}
	}
	data, err := json.Marshal(&signed)
	if err != nil {
		return nil, err
	}
	return &otx.DeliverResult{Data: data}, nil
}

func (h *withdrawHandler) validate(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*WithdrawMsg, error) {
	var msg WithdrawMsg
	if err := otx.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}

	acct, err := h.accounts.Account(db, msg.Account)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, acct.Owner) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "account owned by %s", acct.Owner)
	}
	if acct.Internal {
		return nil, errors.Wrap(errors.ErrUnauthorized, "internal account")
	}

	var total coin.Coin
	if msg.VoucherAmount != nil {
		total = *msg.VoucherAmount
	} else {
		if err := h.validateWindows(ctx, msg.Purse); err != nil {
			return nil, err
		}
		total, err = msg.Purse.Total()
		if err != nil {
			return nil, err
		}
	}
	if total.Ticker != acct.Instrument {
		return nil, errors.Wrapf(errors.ErrType, "withdrawal of %s from %s account", total.Ticker, acct.Instrument)
	}

	if err := h.verifier.VerifyBalanceStatement(db, &msg.Statement, total.Negative()); err != nil {
		return nil, err
	}
	return &msg, nil
}

// validateWindows holds the proposed token series windows against the mint
// policy. The client picks Series and the window bounds, but a window that
// is already over or that outlives maxTokenValidity never gets signed.
func (h *withdrawHandler) validateWindows(ctx otx.Context, p *token.Purse) error {
	horizon := otx.AsUnixTime(otx.Now(ctx).Add(maxTokenValidity))
	for i := range p.Tokens {
		t := &p.Tokens[i]
		if otx.IsExpired(ctx, t.ValidTo) {
			return errors.Wrapf(errors.ErrExpired, "token #%d window already over", i)
		}
		if t.ValidTo > horizon {
			return errors.Wrapf(errors.ErrInput, "token #%d window beyond mint policy", i)
		}
	}
	return nil
}
