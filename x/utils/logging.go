package utils

import (
	"time"

	otx "github.com/secureonelabs/opentxs-sub000"
)

// Logging is a decorator to log requests as they pass through.
type Logging struct{}

var _ otx.Decorator = Logging{}

// NewLogging creates a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> info, success -> debug.
func (r Logging) Check(ctx otx.Context, store otx.KVStore, tx otx.Tx, next otx.Checker) (*otx.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info.
func (r Logging) Deliver(ctx otx.Context, store otx.KVStore, tx otx.Tx, next otx.Deliverer) (*otx.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the logger.
func logDuration(ctx otx.Context, start time.Time, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := otx.GetLogger(ctx).With("duration", delta/time.Microsecond)

	if err != nil {
		logger.With("err", err).Error(msg)
		return
	}
	if lowPrio {
		logger.Debug(msg)
	} else {
		logger.Info(msg)
	}
}
