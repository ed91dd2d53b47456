package dividend

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// RegisterRoutes wires the dividend handler into the dispatcher router.
func RegisterRoutes(r otx.Registry, auth x.Authenticator, accounts account.Controller, ledgers ledger.Controller, verifier statement.Verifier, numbers ledger.NumberSource) {
	r.Handle(&PayMsg{}, &payHandler{
		auth:     auth,
		accounts: accounts,
		ledgers:  ledgers,
		verifier: verifier,
		numbers:  numbers,
	})
}

type payHandler struct {
	auth     x.Authenticator
	accounts account.Controller
	ledgers  ledger.Controller
	verifier statement.Verifier
	numbers  ledger.NumberSource
}

var _ otx.Handler = (*payHandler)(nil)

func (h *payHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &otx.CheckResult{}, nil
}

func (h *payHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	msg, total, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	reserve, err := h.accounts.EnsureReserve(db, account.ReserveDividend, total.Ticker)
	if err != nil {
		return nil, err
	}
	// one debit for the whole payout, so the balance statement is atomic
	if err := h.accounts.MoveCoins(db, msg.PayoutAccount, reserve, total); err != nil {
		return nil, err
	}

	paid, err := h.fanOut(ctx, db, msg, reserve)
	if err != nil {
		return nil, err
	}

	// whatever could not be delivered returns to the payer, as a voucher
	// under a fresh number
	remainder, err := total.Subtract(paid)
	if err != nil {
		return nil, err
	}
	if remainder.IsPositive() {
		if err := h.voucherTo(db, reserve, msg.PayoutAccount, remainder); err != nil {
			return nil, err
		}
	}
	return &otx.DeliverResult{}, nil
}

// fanOut writes one voucher per holder of the instrument into the holder's
// inbox. A holder that cannot be paid is skipped and logged; its share
// stays in the reserve for the payer refund.
func (h *payHandler) fanOut(ctx otx.Context, db otx.KVStore, msg *PayMsg, reserve otx.Address) (coin.Coin, error) {
	logger := otx.GetLogger(ctx)
	paid := coin.Coin{Ticker: msg.PerShare.Ticker}

	err := h.accounts.IterateHolders(db, msg.Instrument, func(id otx.Address, a *account.Account) error {
		if id.Equals(msg.SharesAccount) || !a.Balance.IsPositive() {
			return nil
		}
		if a.Balance.Fractional != 0 {
			logger.Error("holder with fractional shares skipped", "account", id)
			return nil
		}
		payout, err := msg.PerShare.Multiply(a.Balance.Whole)
		if err != nil {
			logger.Error("holder payout overflow", "account", id, "err", err)
			return nil
		}
		if err := h.voucherTo(db, reserve, id, payout); err != nil {
			logger.Error("holder payout failed", "account", id, "err", err)
			return nil
		}
		paid, err = paid.Add(payout)
		return err
	})
	return paid, err
}

func (h *payHandler) voucherTo(db otx.KVStore, reserve, dest otx.Address, amount coin.Coin) error {
	number, err := h.numbers.Next(db)
	if err != nil {
		return err
	}
	return h.ledgers.Append(db, ledger.Inbox, dest, ledger.Entry{
		Kind:   ledger.Voucher,
		Number: number,
		From:   reserve,
		To:     dest,
		Amount: amount,
	})
}

func (h *payHandler) validate(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*PayMsg, coin.Coin, error) {
	var msg PayMsg
	if err := otx.LoadMsg(tx, &msg); err != nil {
		return nil, coin.Coin{}, err
	}

	def, err := h.accounts.Definition(db, msg.Instrument)
	if err != nil {
		return nil, coin.Coin{}, err
	}
	if !h.auth.HasAddress(ctx, def.Issuer) {
		return nil, coin.Coin{}, errors.Wrapf(errors.ErrUnauthorized, "dividend on %s requires its issuer", msg.Instrument)
	}

	shares, err := h.accounts.Account(db, msg.SharesAccount)
	if err != nil {
		return nil, coin.Coin{}, err
	}
	if shares.Instrument != msg.Instrument || !shares.Owner.Equals(def.Issuer) {
		return nil, coin.Coin{}, errors.Wrap(errors.ErrUnauthorized, "not the issuer shares account")
	}
	if shares.Balance.IsNonNegative() || shares.Balance.Fractional != 0 {
		return nil, coin.Coin{}, errors.Wrap(errors.ErrState, "no shares outstanding")
	}
	outstanding := -shares.Balance.Whole

	payout, err := h.accounts.Account(db, msg.PayoutAccount)
	if err != nil {
		return nil, coin.Coin{}, err
	}
	if !h.auth.HasAddress(ctx, payout.Owner) {
		return nil, coin.Coin{}, errors.Wrapf(errors.ErrUnauthorized, "payout account owned by %s", payout.Owner)
	}
	if payout.Instrument != msg.PerShare.Ticker {
		return nil, coin.Coin{}, errors.Wrapf(errors.ErrType, "payout of %s from %s account", msg.PerShare.Ticker, payout.Instrument)
	}

	total, err := msg.PerShare.Multiply(outstanding)
	if err != nil {
		return nil, coin.Coin{}, err
	}
	if !payout.Balance.IsGTE(total) {
		return nil, coin.Coin{}, errors.Wrapf(errors.ErrInsufficientFunds, "payout of %s from balance %s", total, payout.Balance)
	}

	if err := h.verifier.VerifyBalanceStatement(db, &msg.Statement, total.Negative()); err != nil {
		return nil, coin.Coin{}, err
	}
	return &msg, total, nil
}
