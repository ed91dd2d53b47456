package ledger

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/orm"
)

// Controller persists ledgers, one per kind and owner. Inbox and outbox
// owners are account ids, mailbox owners are identity addresses.
type Controller struct {
	bucket orm.ModelBucket
}

func NewController() Controller {
	return Controller{bucket: orm.NewModelBucket("ledger")}
}

func ledgerKey(kind Kind, owner otx.Address) []byte {
	key := make([]byte, 0, len(owner)+1)
	key = append(key, byte(kind))
	return append(key, owner...)
}

// Ledger loads the ledger of one owner. A ledger that was never written is
// returned empty, not as an error.
func (c Controller) Ledger(db otx.ReadOnlyKVStore, kind Kind, owner otx.Address) (*Ledger, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	var l Ledger
	switch err := c.bucket.One(db, ledgerKey(kind, owner), &l); {
	case err == nil:
		return &l, nil
	case errors.ErrNotFound.Is(err):
		return &Ledger{}, nil
	default:
		return nil, errors.Wrapf(err, "%s of %s", kind, owner)
	}
}

// Save persists the ledger, removing the record entirely when it is empty
// so empty and missing stay indistinguishable.
func (c Controller) Save(db otx.KVStore, kind Kind, owner otx.Address, l *Ledger) error {
	key := ledgerKey(kind, owner)
	if len(l.Entries) == 0 {
		switch err := c.bucket.Delete(db, key); {
		case err == nil, errors.ErrNotFound.Is(err):
			return nil
		default:
			return err
		}
	}
	return c.bucket.Put(db, key, l)
}

// Append adds one entry to the owner's ledger. Entry numbers must be
// unique within the ledger.
func (c Controller) Append(db otx.KVStore, kind Kind, owner otx.Address, e Entry) error {
	l, err := c.Ledger(db, kind, owner)
	if err != nil {
		return err
	}
	if l.Find(e.Number) != nil {
		return errors.Wrapf(errors.ErrDuplicate, "entry %d in %s of %s", e.Number, kind, owner)
	}
	l.Entries = append(l.Entries, e)
	return c.Save(db, kind, owner, l)
}

// Remove deletes the entry with the given number, ErrNotFound if absent.
func (c Controller) Remove(db otx.KVStore, kind Kind, owner otx.Address, number int64) error {
	l, err := c.Ledger(db, kind, owner)
	if err != nil {
		return err
	}
	for i := range l.Entries {
		if l.Entries[i].Number == number {
			l.Entries = append(l.Entries[:i], l.Entries[i+1:]...)
			return c.Save(db, kind, owner, l)
		}
	}
	return errors.Wrapf(errors.ErrNotFound, "entry %d in %s of %s", number, kind, owner)
}

// Hash returns the content hash of the owner's ledger.
func (c Controller) Hash(db otx.ReadOnlyKVStore, kind Kind, owner otx.Address) ([]byte, error) {
	l, err := c.Ledger(db, kind, owner)
	if err != nil {
		return nil, err
	}
	return l.Hash(), nil
}
