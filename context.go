package otx

import (
	"context"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

// Context is just a typedef for easy of use, and to keep the door open for a
// richer context type without touching every handler signature.
type Context = context.Context

type contextKey int // local to the otx module

const (
	contextKeyLogger contextKey = iota
	contextKeyTime
	contextKeyNotaryID
	contextKeyMainNumber
)

// DefaultLogger is used for all contexts that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithLogger sets the logger for this context.
func WithLogger(ctx Context, logger log.Logger) Context {
	// Logger is a private type to avoid collisions; it may be reset any
	// number of times as decorators annotate it.
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx Context) log.Logger {
	if logger, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return logger
	}
	return DefaultLogger
}

// WithNotaryID sets the identifier of this notary instance. Set once when
// the dispatcher is built.
func WithNotaryID(ctx Context, id string) Context {
	return context.WithValue(ctx, contextKeyNotaryID, id)
}

// GetNotaryID returns the notary instance identifier, or an empty string.
func GetNotaryID(ctx Context) string {
	id, _ := ctx.Value(contextKeyNotaryID).(string)
	return id
}

// WithMainNumber sets the main transaction number of the notarization in
// flight. The dispatcher sets it right before routing to a handler.
func WithMainNumber(ctx Context, n int64) Context {
	return context.WithValue(ctx, contextKeyMainNumber, n)
}

// MainNumber returns the main transaction number of the notarization in
// flight, or zero outside of one.
func MainNumber(ctx Context) int64 {
	n, _ := ctx.Value(contextKeyMainNumber).(int64)
	return n
}

// WithTime sets the processing time for this notarization.
func WithTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyTime, t)
}

// Now returns the notarization time if set, or the wall clock.
func Now(ctx Context) time.Time {
	if t, ok := ctx.Value(contextKeyTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// IsExpired returns true if the given time is in the past as compared to the
// "now" declared for the notarization. Expiration is inclusive.
func IsExpired(ctx Context, t UnixTime) bool {
	return t <= AsUnixTime(Now(ctx))
}
