package exchange

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// RegisterRoutes wires the basket exchange handler into the dispatcher
// router.
func RegisterRoutes(r otx.Registry, auth x.Authenticator, accounts account.Controller, verifier statement.Verifier) {
	r.Handle(&BasketMsg{}, &basketHandler{
		auth:     auth,
		accounts: accounts,
		verifier: verifier,
	})
}

type basketHandler struct {
	auth     x.Authenticator
	accounts account.Controller
	verifier statement.Verifier
}

var _ otx.Handler = (*basketHandler)(nil)

func (h *basketHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &otx.CheckResult{}, nil
}

func (h *basketHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	msg, def, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	for i, comp := range def.Basket {
		leg, err := coin.NewCoin(comp.Weight, 0, comp.Instrument).Multiply(msg.Units)
		if err != nil {
			return nil, err
		}
		reserve, err := h.accounts.EnsureReserve(db, account.ReserveBasket, comp.Instrument)
		if err != nil {
			return nil, err
		}
		if msg.Direction == In {
			err = h.accounts.MoveCoins(db, msg.ComponentAccounts[i], reserve, leg)
		} else {
			err = h.accounts.MoveCoins(db, reserve, msg.ComponentAccounts[i], leg)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "leg %s", comp.Instrument)
		}
	}

	issuer, err := h.accounts.EnsureBasketIssuer(db, msg.Basket)
	if err != nil {
		return nil, err
	}
	units := coin.NewCoin(msg.Units, 0, msg.Basket)
	if msg.Direction == In {
		err = h.accounts.MoveCoins(db, issuer, msg.BasketAccount, units)
	} else {
		err = h.accounts.MoveCoins(db, msg.BasketAccount, issuer, units)
	}
	if err != nil {
		return nil, errors.Wrap(err, "basket leg")
	}
	return &otx.DeliverResult{}, nil
}

// validate runs the read-only verification path shared by Check and
// Deliver.
func (h *basketHandler) validate(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*BasketMsg, *account.Definition, error) {
	var msg BasketMsg
	if err := otx.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}

	def, err := h.accounts.Definition(db, msg.Basket)
	if err != nil {
		return nil, nil, err
	}
	if !def.IsBasket() {
		return nil, nil, errors.Wrapf(errors.ErrState, "%s is not a basket instrument", msg.Basket)
	}
	if len(msg.ComponentAccounts) != len(def.Basket) {
		return nil, nil, errors.Wrapf(errors.ErrInput, "%d component accounts for %d legs",
			len(msg.ComponentAccounts), len(def.Basket))
	}

	basketAcct, err := h.accounts.Account(db, msg.BasketAccount)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, basketAcct.Owner) {
		return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "basket account owned by %s", basketAcct.Owner)
	}
	if basketAcct.Internal {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "internal basket account")
	}
	if basketAcct.Instrument != msg.Basket {
		return nil, nil, errors.Wrapf(errors.ErrType, "basket account holds %s", basketAcct.Instrument)
	}

	for i, comp := range def.Basket {
		a, err := h.accounts.Account(db, msg.ComponentAccounts[i])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "leg %s", comp.Instrument)
		}
		if a.Internal || !a.Owner.Equals(basketAcct.Owner) {
			return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "leg %s account", comp.Instrument)
		}
		if a.Instrument != comp.Instrument {
			return nil, nil, errors.Wrapf(errors.ErrType, "leg %s paid from %s account", comp.Instrument, a.Instrument)
		}
	}

	if !h.auth.HasAddress(ctx, msg.Statement.Nym) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "statement for another nym")
	}
	consuming := []int64{otx.MainNumber(ctx)}
	if err := h.verifier.VerifyTransactionStatement(db, &msg.Statement, consuming); err != nil {
		return nil, nil, err
	}
	return &msg, def, nil
}
