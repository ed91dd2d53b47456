package notary

import (
	"github.com/tendermint/tendermint/libs/log"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/nym"
)

// accountLister is implemented by messages that touch accounts. The first
// account listed is the primary one echoed back in the response snapshot.
type accountLister interface {
	InvolvedAccounts() []otx.Address
}

// partyLister is implemented by messages that bind several identities, so
// the dispatcher knows whom to send failure notices to. Party nym ledgers
// are part of the lock set.
type partyLister interface {
	PartyNyms() []otx.Address
}

// recordLister is implemented by messages whose settlement touches keyed
// records outside any account, like spent instrument ids or the shared
// server number sequence. Records serialize by name, like accounts by
// address.
type recordLister interface {
	InvolvedRecords() []string
}

// soloLister marks messages whose settlement reaches state no listing can
// name before dispatch, like every holder of an instrument or the senders
// behind inbox entries. They hold the dispatch barrier exclusively.
type soloLister interface {
	SettlesUnlisted() bool
}

// dispatchKeys derives the serialization keys a request must hold before
// it dispatches: the signing nym, every listed account, every party nym
// and every named record. A message that settles unlisted state takes the
// barrier exclusively instead.
func dispatchKeys(req *Request, msg otx.Msg) (keys []string, solo bool) {
	if s, ok := msg.(soloLister); ok && s.SettlesUnlisted() {
		return nil, true
	}
	keys = []string{"n|" + req.Nym.String()}
	if lister, ok := msg.(accountLister); ok {
		for _, a := range lister.InvolvedAccounts() {
			keys = append(keys, "a|"+a.String())
		}
	}
	if lister, ok := msg.(partyLister); ok {
		for _, p := range lister.PartyNyms() {
			keys = append(keys, "n|"+p.String())
		}
	}
	if lister, ok := msg.(recordLister); ok {
		for _, r := range lister.InvolvedRecords() {
			keys = append(keys, "r|"+r)
		}
	}
	return keys, false
}

// Engine is the notarization dispatcher. It owns the outer request cycle:
// envelope decoding and signature verification, transaction number
// consumption and resolution, the check/deliver split, and the signed
// response. Everything inside a notarization runs through the decorator
// stack and the router.
type Engine struct {
	codec    *Codec
	stack    otx.Handler
	signer   crypto.Signer
	notifier Notifier
	logger   log.Logger

	nyms     nym.Controller
	accounts account.Controller
	ledgers  ledger.Controller
	numbers  ledger.NumberSource

	locks *lockManager
}

// NewEngine builds the dispatcher around a resolved handler stack. The
// signer is the notary's own key, used for every response. A nil notifier
// or logger falls back to a no-op.
func NewEngine(stack otx.Handler, signer crypto.Signer, notifier Notifier, logger log.Logger) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = otx.DefaultLogger
	}
	return &Engine{
		codec:    StdCodec(),
		stack:    stack,
		signer:   signer,
		notifier: notifier,
		logger:   logger,
		nyms:     nym.NewController(),
		accounts: account.NewController(),
		ledgers:  ledger.NewController(),
		numbers:  ledger.NewNumberSource(),
		locks:    newLockManager(),
	}
}

// PublicKey returns the notary's response signing key.
func (e *Engine) PublicKey() crypto.PublicKey {
	return e.signer.PublicKey()
}

// ProcessRequest runs one notarization end to end and returns the signed
// response. The store must be the live state; all mutation happens either
// under a cache wrap or through the number ledger, which is mutated on the
// live store so a failed settlement still resolves its number.
func (e *Engine) ProcessRequest(ctx otx.Context, db otx.CacheableKVStore, raw []byte) Response {
	req, err := e.codec.DecodeRequest(raw)
	if err != nil {
		e.logger.Debug("undecodable request", "err", err)
		return e.sign(Response{Reason: err.Error()})
	}
	return e.sign(e.process(ctx, db, req))
}

func (e *Engine) process(ctx otx.Context, db otx.CacheableKVStore, req *Request) Response {
	msg, err := req.GetMsg()
	if err != nil {
		return e.reject(db, req, err)
	}

	var involved []otx.Address
	if lister, ok := msg.(accountLister); ok {
		involved = lister.InvolvedAccounts()
	}
	keys, solo := dispatchKeys(req, msg)
	release := e.locks.acquire(keys, solo)
	defer release()

	logger := e.logger.With("nym", req.Nym, "path", req.Path, "main", req.MainNumber)

	nymLedger, err := e.nyms.Ledger(db, req.Nym)
	switch {
	case errors.ErrNotFound.Is(err):
		return e.reject(db, req, errors.Wrapf(errors.ErrUnauthorized, "unknown nym %s", req.Nym))
	case err != nil:
		return e.reject(db, req, errors.Wrap(err, "nym ledger"))
	}
	if !nymLedger.Pubkey.Verify(req.SigningBytes(), req.Signature) {
		return e.reject(db, req, errors.Wrap(errors.ErrUnauthorized, "invalid envelope signature"))
	}

	// A fresh identity accepting its first number grant is the only
	// request allowed through without a main number.
	if req.MainNumber == 0 && msg.Path() != "process/mailbox" {
		return e.reject(db, req, errors.Wrap(errors.ErrNumber, "main number required"))
	}

	ctx = withSigner(ctx, nymLedger.Pubkey.Condition())
	ctx = otx.WithMainNumber(ctx, req.MainNumber)
	ctx = otx.WithLogger(ctx, logger)

	// Check runs against a throwaway cache so a rejection leaves the
	// state, the main number included, exactly as it was.
	checkCache := db.CacheWrap()
	_, err = e.stack.Check(ctx, checkCache, req)
	checkCache.Discard()
	if err != nil {
		logger.Debug("request rejected", "err", err)
		return e.reject(db, req, err)
	}

	// The number is spent the moment the notarization is attempted.
	// Whatever deliver does next, the client can never replay it.
	if req.MainNumber != 0 {
		if err := e.nyms.ConsumeAvailable(db, req.Nym, req.MainNumber); err != nil {
			return e.reject(db, req, err)
		}
	}

	res, err := e.stack.Deliver(ctx, db, req)
	e.resolveNumber(db, req, msg, err, logger)

	if err != nil {
		logger.Info("notarization failed", "err", err)
		if errors.ErrCollaborator.Is(err) {
			e.noticeFailure(db, msg, req.MainNumber, err, logger)
		}
		return e.failure(db, req, err)
	}

	logger.Info("notarization delivered")
	e.notifyParties(msg)

	resp := Response{
		Success: true,
		Request: *req,
		Account: e.snapshot(db, involved),
	}
	if res != nil {
		resp.Data = res.Data
	}
	return resp
}

// resolveNumber settles the main number's fate after deliver. One shot
// kinds close it no matter the outcome. Long lived kinds keep it issued on
// success, since a later inbox cycle closes it. A collaborator failure is
// no fault of the client, so the number goes back to the available pool.
func (e *Engine) resolveNumber(db otx.KVStore, req *Request, msg otx.Msg, deliverErr error, logger log.Logger) {
	if req.MainNumber == 0 {
		return
	}
	var err error
	switch {
	case deliverErr != nil && errors.ErrCollaborator.Is(deliverErr):
		err = e.nyms.ReturnAvailable(db, req.Nym, req.MainNumber)
	case deliverErr != nil || msg.Disposition() == otx.OneShot:
		err = e.nyms.CloseIssued(db, req.Nym, req.MainNumber)
	}
	if err != nil {
		logger.Error("cannot resolve main number", "err", err)
	}
}

// noticeFailure writes a failure notice into every party's mailbox when an
// external collaborator refused the operation. Notice delivery is best
// effort, a party with a broken mailbox does not block the others.
func (e *Engine) noticeFailure(db otx.KVStore, msg otx.Msg, main int64, cause error, logger log.Logger) {
	lister, ok := msg.(partyLister)
	if !ok {
		return
	}
	parties := lister.PartyNyms()
	if len(parties) == 0 {
		return
	}
	ns, err := e.numbers.NextBatch(db, len(parties))
	if err != nil {
		logger.Error("cannot draw notice numbers", "err", err)
		return
	}
	for i, party := range parties {
		notice := ledger.Entry{
			Kind:      ledger.Notice,
			Number:    ns[i],
			Reference: main,
			To:        party,
			Success:   false,
			Memo:      cause.Error(),
		}
		if err := e.ledgers.Append(db, ledger.Mailbox, party, notice); err != nil {
			logger.Error("cannot deliver failure notice", "party", party, "err", err)
			continue
		}
		e.notifier.Notify(party)
	}
}

func (e *Engine) notifyParties(msg otx.Msg) {
	lister, ok := msg.(partyLister)
	if !ok {
		return
	}
	for _, party := range lister.PartyNyms() {
		e.notifier.Notify(party)
	}
}

// reject builds the response for a request that never made it past check.
func (e *Engine) reject(db otx.ReadOnlyKVStore, req *Request, cause error) Response {
	return Response{
		Request: *req,
		Reason:  cause.Error(),
	}
}

// failure builds the response for a delivered but failed notarization. The
// account snapshot is included so the client sees the state it must
// reconcile against, number ledger changes included.
func (e *Engine) failure(db otx.ReadOnlyKVStore, req *Request, cause error) Response {
	resp := Response{
		Request: *req,
		Reason:  cause.Error(),
	}
	if msg, err := req.GetMsg(); err == nil {
		if lister, ok := msg.(accountLister); ok {
			resp.Account = e.snapshot(db, lister.InvolvedAccounts())
		}
	}
	return resp
}

// snapshot captures the primary account's balance and ledger hashes. A
// request without accounts, like mailbox processing, yields no snapshot.
func (e *Engine) snapshot(db otx.ReadOnlyKVStore, involved []otx.Address) *AccountSnapshot {
	if len(involved) == 0 {
		return nil
	}
	id := involved[0]
	balance, err := e.accounts.Balance(db, id)
	if err != nil {
		e.logger.Error("cannot snapshot account balance", "account", id, "err", err)
		return nil
	}
	inboxHash, err := e.ledgers.Hash(db, ledger.Inbox, id)
	if err != nil {
		e.logger.Error("cannot hash inbox", "account", id, "err", err)
		return nil
	}
	outboxHash, err := e.ledgers.Hash(db, ledger.Outbox, id)
	if err != nil {
		e.logger.Error("cannot hash outbox", "account", id, "err", err)
		return nil
	}
	return &AccountSnapshot{
		ID:         id,
		Balance:    balance,
		InboxHash:  inboxHash,
		OutboxHash: outboxHash,
	}
}

func (e *Engine) sign(resp Response) Response {
	bz, err := resp.SigningBytes()
	if err != nil {
		e.logger.Error("cannot serialize response", "err", err)
		return resp
	}
	sig, err := e.signer.Sign(bz)
	if err != nil {
		e.logger.Error("cannot sign response", "err", err)
		return resp
	}
	resp.Signature = sig
	return resp
}
