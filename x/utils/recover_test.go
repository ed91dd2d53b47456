package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/store"
)

type panicHandler struct{}

var _ otx.Handler = panicHandler{}

func (panicHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	panic("handler blew up")
}

func (panicHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	panic("handler blew up")
}

func TestRecovery(t *testing.T) {
	db := store.MemStore()
	rec := NewRecovery()

	_, err := rec.Check(context.Background(), db, nil, panicHandler{})
	assert.True(t, errors.ErrPanic.Is(err), "%+v", err)

	_, err = rec.Deliver(context.Background(), db, nil, panicHandler{})
	assert.True(t, errors.ErrPanic.Is(err), "%+v", err)
}

type errPanicHandler struct{}

var _ otx.Handler = errPanicHandler{}

func (errPanicHandler) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	panic(errors.Wrap(errors.ErrDatabase, "bucket gone"))
}

func (errPanicHandler) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	panic(errors.Wrap(errors.ErrDatabase, "bucket gone"))
}

func TestRecoveryKeepsErrorMessage(t *testing.T) {
	db := store.MemStore()
	rec := NewRecovery()

	_, err := rec.Deliver(context.Background(), db, nil, errPanicHandler{})
	assert.True(t, errors.ErrPanic.Is(err), "%+v", err)
	assert.Contains(t, err.Error(), "bucket gone")
}
