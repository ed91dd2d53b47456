package token

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/orm"
	"github.com/secureonelabs/opentxs-sub000/x/account"
)

// Adapter bridges the engine to the signing primitive and the spent-token
// record. Both Issue and Redeem run inside the caller's savepoint, so an
// error on any step discards every balance change of the bundle.
type Adapter struct {
	accounts account.Controller
	signer   Signer
	spent    orm.ModelBucket
}

func NewAdapter(accounts account.Controller, signer Signer) Adapter {
	return Adapter{
		accounts: accounts,
		signer:   signer,
		spent:    orm.NewModelBucket("spent"),
	}
}

// IsSpent reports whether a token id was redeemed before.
func (a Adapter) IsSpent(db otx.ReadOnlyKVStore, t *Token) (bool, error) {
	return a.spent.Has(db, t.ID[:])
}

// Issue signs the token and funds it: the requester's account is debited
// by the token value, the mint reserve credited. The signed token is ready
// for the reply bundle when Issue returns nil.
func (a Adapter) Issue(db otx.KVStore, requester otx.Address, t *Token) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if len(t.Signature) != 0 {
		return errors.Wrap(errors.ErrState, "token already signed")
	}
	if err := a.signer.SignToken(t); err != nil {
		return err
	}
	reserve, err := a.accounts.EnsureReserve(db, account.ReserveMint, t.Instrument)
	if err != nil {
		return err
	}
	return a.accounts.MoveCoins(db, requester, reserve, t.Value)
}

// Redeem verifies a presented token, moves its value from the mint reserve
// to the depositor and marks it spent. Spent marking is the final step: a
// failure there returns an error with the balance moves still pending in
// the savepoint, which the caller discards.
func (a Adapter) Redeem(ctx otx.Context, db otx.KVStore, depositor otx.Address, t *Token) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := a.signer.VerifyToken(t); err != nil {
		return err
	}
	now := otx.AsUnixTime(otx.Now(ctx))
	if now < t.ValidFrom || now >= t.ValidTo {
		return errors.Wrapf(errors.ErrExpired, "token series %d window", t.Series)
	}
	switch spent, err := a.IsSpent(db, t); {
	case err != nil:
		return err
	case spent:
		return errors.Wrapf(errors.ErrDuplicate, "token %s already spent", t.ID)
	}

	reserve, err := a.accounts.EnsureReserve(db, account.ReserveMint, t.Instrument)
	if err != nil {
		return err
	}
	if err := a.accounts.MoveCoins(db, reserve, depositor, t.Value); err != nil {
		return err
	}
	return a.spent.Put(db, t.ID[:], &spentRecord{SpentAt: now})
}
