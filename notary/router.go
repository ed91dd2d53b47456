package notary

import (
	"regexp"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// isPath matches the two segment message paths, like "transfer/send".
var isPath = regexp.MustCompile(`^[a-z0-9_]+/[a-z0-9_]+$`).MatchString

// Router routes requests to the handler registered for the message path.
type Router struct {
	routes map[string]otx.Handler
}

var _ otx.Registry = (*Router)(nil)
var _ otx.Handler = (*Router)(nil)

func NewRouter() *Router {
	return &Router{routes: make(map[string]otx.Handler)}
}

// Handle registers the handler for the message's path. Calling twice for
// the same path or with an invalid path is a programmer error.
func (r *Router) Handle(m otx.Msg, h otx.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic("invalid message path: " + path)
	}
	if _, ok := r.routes[path]; ok {
		panic("duplicate route: " + path)
	}
	r.routes[path] = h
}

// Handler returns the registered handler, nil if the path is unknown.
func (r *Router) Handler(path string) otx.Handler {
	return r.routes[path]
}

func (r *Router) Check(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.CheckResult, error) {
	h, err := r.route(tx)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, db, tx)
}

func (r *Router) Deliver(ctx otx.Context, db otx.KVStore, tx otx.Tx) (*otx.DeliverResult, error) {
	h, err := r.route(tx)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, db, tx)
}

func (r *Router) route(tx otx.Tx) (otx.Handler, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	h := r.Handler(msg.Path())
	if h == nil {
		return nil, errors.Wrapf(errors.ErrMsg, "no handler for %q", msg.Path())
	}
	return h, nil
}
