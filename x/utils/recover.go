package utils

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Recovery catches panics escaping the handler stack and folds them into
// the regular error path, so one broken settlement cannot take the whole
// dispatcher down with it.
type Recovery struct{}

var _ otx.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

// Check passes through, converting a panic below into an ErrPanic result.
func (r Recovery) Check(ctx otx.Context, store otx.KVStore, tx otx.Tx, next otx.Checker) (res *otx.CheckResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, panicErr(p)
		}
	}()
	return next.Check(ctx, store, tx)
}

// Deliver passes through, converting a panic below into an ErrPanic
// result.
func (r Recovery) Deliver(ctx otx.Context, store otx.KVStore, tx otx.Tx, next otx.Deliverer) (res *otx.DeliverResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, panicErr(p)
		}
	}()
	return next.Deliver(ctx, store, tx)
}

// panicErr keeps the message of an error panic, anything else is rendered
// through its value.
func panicErr(p interface{}) error {
	if e, ok := p.(error); ok {
		return errors.Wrap(errors.ErrPanic, e.Error())
	}
	return errors.Wrapf(errors.ErrPanic, "%v", p)
}
