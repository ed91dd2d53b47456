/*
Package notary is the top level dispatcher of the engine.

One inbound request carries one signed message for one identity. The
dispatcher verifies the envelope signature against the identity's
registered key, checks the main transaction number is on the identity's
books, runs the kind handler's read-only verification, consumes the number
and settles under a savepoint. Afterwards it resolves the number ledger
side effect from the message's disposition and the outcome, and produces a
signed response embedding a verbatim copy of the request.

A number is consumed only after verification passes, so a rejected request
leaves it available. A settlement failure closes the number; a refusal by
an external collaborator returns it and delivers failure notices to every
involved party instead.
*/
package notary
