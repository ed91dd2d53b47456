package account

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/orm"
)

// Controller owns the account and instrument buckets. Every balance change
// in the engine goes through MoveCoins so debits and credits always pair.
type Controller struct {
	accounts    orm.ModelBucket
	instruments orm.ModelBucket
}

func NewController() Controller {
	return Controller{
		accounts:    orm.NewModelBucket("acct"),
		instruments: orm.NewModelBucket("instr"),
	}
}

// Account loads an account, ErrNotFound if it does not exist.
func (c Controller) Account(db otx.ReadOnlyKVStore, id otx.Address) (*Account, error) {
	var a Account
	if err := c.accounts.One(db, id, &a); err != nil {
		return nil, errors.Wrapf(err, "account %s", id)
	}
	return &a, nil
}

// Create registers a new account under the given id.
func (c Controller) Create(db otx.KVStore, id otx.Address, a *Account) error {
	switch has, err := c.accounts.Has(db, id); {
	case err != nil:
		return err
	case has:
		return errors.Wrapf(errors.ErrDuplicate, "account %s", id)
	}
	return c.accounts.Put(db, id, a)
}

// Balance returns the current balance of an account.
func (c Controller) Balance(db otx.ReadOnlyKVStore, id otx.Address) (coin.Coin, error) {
	a, err := c.Account(db, id)
	if err != nil {
		return coin.Coin{}, err
	}
	return a.Balance, nil
}

// MoveCoins debits src and credits dest by amount. Both accounts must be
// denominated in the amount's instrument and the debit must not violate the
// source sign policy. On any failure neither account changes.
func (c Controller) MoveCoins(db otx.KVStore, src, dest otx.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "move of %s", amount)
	}
	if src.Equals(dest) {
		return errors.Wrap(errors.ErrInput, "same source and destination")
	}
	sender, err := c.Account(db, src)
	if err != nil {
		return err
	}
	recipient, err := c.Account(db, dest)
	if err != nil {
		return err
	}
	if sender.Instrument != amount.Ticker || recipient.Instrument != amount.Ticker {
		return errors.Wrapf(errors.ErrType, "move of %s between %s and %s accounts",
			amount.Ticker, sender.Instrument, recipient.Instrument)
	}
	debited, err := sender.Balance.Subtract(amount)
	if err != nil {
		return err
	}
	if !debited.IsNonNegative() && !sender.AllowNegative {
		return errors.Wrapf(errors.ErrInsufficientFunds, "balance %s, debit %s", sender.Balance, amount)
	}
	credited, err := recipient.Balance.Add(amount)
	if err != nil {
		return err
	}
	sender.Balance = debited
	recipient.Balance = credited
	if err := c.accounts.Put(db, src, sender); err != nil {
		return err
	}
	return c.accounts.Put(db, dest, recipient)
}

// IssueCoins applies a signed delta to one account, bypassing the pairing
// rule. Only issuer accounting uses this, for recording shares outstanding.
func (c Controller) IssueCoins(db otx.KVStore, id otx.Address, amount coin.Coin) error {
	a, err := c.Account(db, id)
	if err != nil {
		return err
	}
	if a.Instrument != amount.Ticker {
		return errors.Wrapf(errors.ErrType, "issue of %s on %s account", amount.Ticker, a.Instrument)
	}
	updated, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	if !updated.IsNonNegative() && !a.AllowNegative {
		return errors.Wrapf(errors.ErrInsufficientFunds, "balance %s, delta %s", a.Balance, amount)
	}
	a.Balance = updated
	return c.accounts.Put(db, id, a)
}

// EnsureReserve returns the reserve account address for the given kind and
// instrument, creating the account on first use.
func (c Controller) EnsureReserve(db otx.KVStore, kind, instrument string) (otx.Address, error) {
	id := ReserveAddress(kind, instrument)
	switch has, err := c.accounts.Has(db, id); {
	case err != nil:
		return nil, err
	case has:
		return id, nil
	}
	a := &Account{
		Owner:         id,
		Instrument:    instrument,
		Balance:       coin.Coin{Ticker: instrument},
		Internal:      true,
		AllowNegative: false,
	}
	if err := c.accounts.Put(db, id, a); err != nil {
		return nil, err
	}
	return id, nil
}

// EnsureBasketIssuer returns the issuing account of a basket instrument,
// creating it on first use. The account goes negative by one unit for every
// basket unit in circulation, mirroring an issuer shares account.
func (c Controller) EnsureBasketIssuer(db otx.KVStore, basket string) (otx.Address, error) {
	id := ReserveAddress(ReserveBasket, basket)
	switch has, err := c.accounts.Has(db, id); {
	case err != nil:
		return nil, err
	case has:
		return id, nil
	}
	a := &Account{
		Owner:         id,
		Instrument:    basket,
		Balance:       coin.Coin{Ticker: basket},
		Internal:      true,
		AllowNegative: true,
	}
	if err := c.accounts.Put(db, id, a); err != nil {
		return nil, err
	}
	return id, nil
}

// Definition loads an instrument definition by id.
func (c Controller) Definition(db otx.ReadOnlyKVStore, id string) (*Definition, error) {
	var d Definition
	if err := c.instruments.One(db, []byte(id), &d); err != nil {
		return nil, errors.Wrapf(err, "instrument %s", id)
	}
	return &d, nil
}

// CreateDefinition registers a new instrument.
func (c Controller) CreateDefinition(db otx.KVStore, d *Definition) error {
	switch has, err := c.instruments.Has(db, []byte(d.ID)); {
	case err != nil:
		return err
	case has:
		return errors.Wrapf(errors.ErrDuplicate, "instrument %s", d.ID)
	}
	return c.instruments.Put(db, []byte(d.ID), d)
}

// IterateHolders walks every non-internal account denominated in the given
// instrument, the asset account enumerator the dividend fan-out relies on.
func (c Controller) IterateHolders(db otx.ReadOnlyKVStore, instrument string, fn func(id otx.Address, a *Account) error) error {
	return c.accounts.Iterate(db, func(key, raw []byte) error {
		var a Account
		if err := a.Unmarshal(raw); err != nil {
			return errors.Wrap(errors.ErrModel, err.Error())
		}
		if a.Instrument != instrument || a.Internal {
			return nil
		}
		return fn(otx.Address(key), &a)
	})
}
