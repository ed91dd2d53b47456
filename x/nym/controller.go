package nym

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/orm"
)

// Controller is the only way to move numbers through their lifecycle. It
// persists ledgers in its own bucket and never hands out mutable state.
type Controller struct {
	bucket orm.ModelBucket
}

// NewController returns a controller over the nym ledger bucket.
func NewController() Controller {
	return Controller{bucket: orm.NewModelBucket("nym")}
}

// Ledger loads the identity's ledger, ErrNotFound for unknown identities.
func (c Controller) Ledger(db otx.ReadOnlyKVStore, nym otx.Address) (*Ledger, error) {
	var l Ledger
	if err := c.bucket.One(db, nym, &l); err != nil {
		return nil, errors.Wrapf(err, "nym %s", nym)
	}
	return &l, nil
}

// Register creates the ledger for a new identity with no numbers issued.
func (c Controller) Register(db otx.KVStore, nym otx.Address, pub crypto.PublicKey) error {
	switch err := c.bucket.One(db, nym, &Ledger{}); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "nym %s", nym)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	return c.bucket.Put(db, nym, &Ledger{Pubkey: pub})
}

// IsIssued reports whether the identity is responsible for n.
func (c Controller) IsIssued(db otx.ReadOnlyKVStore, nym otx.Address, n int64) (bool, error) {
	l, err := c.Ledger(db, nym)
	if err != nil {
		return false, err
	}
	return containsNumber(l.Issued, n), nil
}

// IsAvailable reports whether n can open a new operation.
func (c Controller) IsAvailable(db otx.ReadOnlyKVStore, nym otx.Address, n int64) (bool, error) {
	l, err := c.Ledger(db, nym)
	if err != nil {
		return false, err
	}
	return containsNumber(l.Available, n), nil
}

// ConsumeAvailable moves n from available to in-use. It fails with
// ErrNumber if n is not available, leaving the ledger untouched, so a
// number can never open two operations even when verification later fails.
func (c Controller) ConsumeAvailable(db otx.KVStore, nym otx.Address, n int64) error {
	l, err := c.Ledger(db, nym)
	if err != nil {
		return err
	}
	avail, ok := removeNumber(l.Available, n)
	if !ok {
		return errors.Wrapf(errors.ErrNumber, "number %d not available", n)
	}
	l.Available = avail
	return c.bucket.Put(db, nym, l)
}

// ReturnAvailable puts an in-use number back into available. Only valid for
// numbers still issued, used when a collaborator refuses an operation whose
// numbers were already consumed.
func (c Controller) ReturnAvailable(db otx.KVStore, nym otx.Address, n int64) error {
	l, err := c.Ledger(db, nym)
	if err != nil {
		return err
	}
	if !containsNumber(l.Issued, n) {
		return errors.Wrapf(errors.ErrNumber, "number %d not issued", n)
	}
	l.Available = insertNumber(l.Available, n)
	return c.bucket.Put(db, nym, l)
}

// CloseIssued removes n from issued permanently. Call only once the
// operation that owns n is terminally resolved.
func (c Controller) CloseIssued(db otx.KVStore, nym otx.Address, n int64) error {
	l, err := c.Ledger(db, nym)
	if err != nil {
		return err
	}
	issued, ok := removeNumber(l.Issued, n)
	if !ok {
		return errors.Wrapf(errors.ErrNumber, "number %d not issued", n)
	}
	l.Issued = issued
	l.Available, _ = removeNumber(l.Available, n)
	l.OpenCron, _ = removeNumber(l.OpenCron, n)
	return c.bucket.Put(db, nym, l)
}

// ConsumeIssued terminally uses a counterparty's number in one step, for
// instruments like cheques where the number was burned when the instrument
// was written, not when it is deposited.
func (c Controller) ConsumeIssued(db otx.KVStore, nym otx.Address, n int64) error {
	return c.CloseIssued(db, nym, n)
}

// OpenCronItem marks n as opening a live recurring item.
func (c Controller) OpenCronItem(db otx.KVStore, nym otx.Address, n int64) error {
	l, err := c.Ledger(db, nym)
	if err != nil {
		return err
	}
	if !containsNumber(l.Issued, n) {
		return errors.Wrapf(errors.ErrNumber, "number %d not issued", n)
	}
	if containsNumber(l.OpenCron, n) {
		return errors.Wrapf(errors.ErrNumber, "number %d already open", n)
	}
	l.OpenCron = insertNumber(l.OpenCron, n)
	return c.bucket.Put(db, nym, l)
}

// CloseCronItem removes n from the open recurring set, keeping it issued.
func (c Controller) CloseCronItem(db otx.KVStore, nym otx.Address, n int64) error {
	l, err := c.Ledger(db, nym)
	if err != nil {
		return err
	}
	open, ok := removeNumber(l.OpenCron, n)
	if !ok {
		return errors.Wrapf(errors.ErrNumber, "number %d not an open cron item", n)
	}
	l.OpenCron = open
	return c.bucket.Put(db, nym, l)
}

// VerifyCronItem reports whether n opens a live recurring item.
func (c Controller) VerifyCronItem(db otx.ReadOnlyKVStore, nym otx.Address, n int64) (bool, error) {
	l, err := c.Ledger(db, nym)
	if err != nil {
		return false, err
	}
	return containsNumber(l.OpenCron, n), nil
}

// AcceptIssuedNumbers adds a granted number set to issued and available
// atomically. Granting an already issued number is rejected so a replayed
// grant cannot widen the available set.
func (c Controller) AcceptIssuedNumbers(db otx.KVStore, nym otx.Address, ns []int64) error {
	l, err := c.Ledger(db, nym)
	if err != nil {
		return err
	}
	for _, n := range ns {
		if containsNumber(l.Issued, n) {
			return errors.Wrapf(errors.ErrDuplicate, "number %d already issued", n)
		}
	}
	for _, n := range ns {
		l.Issued = insertNumber(l.Issued, n)
		l.Available = insertNumber(l.Available, n)
	}
	return c.bucket.Put(db, nym, l)
}
