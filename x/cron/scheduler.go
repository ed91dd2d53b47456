package cron

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/orm"
)

// Scheduler is the external collaborator owning live recurring items. The
// engine submits validated items and reacts to the outcome; matching and
// expiration happen elsewhere.
type Scheduler interface {
	// AddCronItem takes ownership of a validated item. An error means
	// the submission was refused and no state was kept.
	AddCronItem(db otx.KVStore, item *Item) error
	// RemoveCronItem takes a live item out of the scheduler on behalf of
	// the requesting party.
	RemoveCronItem(db otx.KVStore, openingNumber int64, requester otx.Address) error
	// GetItemByOpeningNumber returns the live item opened by the given
	// number, ErrNotFound if none.
	GetItemByOpeningNumber(db otx.ReadOnlyKVStore, openingNumber int64) (*Item, error)
}

// StoreScheduler keeps live items in a bucket keyed by opening number.
type StoreScheduler struct {
	bucket orm.ModelBucket
}

var _ Scheduler = StoreScheduler{}

func NewScheduler() StoreScheduler {
	return StoreScheduler{bucket: orm.NewModelBucket("cron")}
}

func (s StoreScheduler) AddCronItem(db otx.KVStore, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	key := itemKey(item.OpeningNumber)
	switch has, err := s.bucket.Has(db, key); {
	case err != nil:
		return err
	case has:
		return errors.Wrapf(errors.ErrDuplicate, "item %d", item.OpeningNumber)
	}
	return s.bucket.Put(db, key, item)
}

func (s StoreScheduler) RemoveCronItem(db otx.KVStore, openingNumber int64, requester otx.Address) error {
	item, err := s.GetItemByOpeningNumber(db, openingNumber)
	if err != nil {
		return err
	}
	if item.Party(requester) == nil {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not a party of item %d", requester, openingNumber)
	}
	return s.bucket.Delete(db, itemKey(openingNumber))
}

func (s StoreScheduler) GetItemByOpeningNumber(db otx.ReadOnlyKVStore, openingNumber int64) (*Item, error) {
	var item Item
	if err := s.bucket.One(db, itemKey(openingNumber), &item); err != nil {
		return nil, errors.Wrapf(err, "item %d", openingNumber)
	}
	return &item, nil
}
