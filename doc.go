/*
Package otx defines the interfaces that tie the notary engine together.

The root package contains no business logic. It declares the contracts
between the dispatcher, the per-kind settlement handlers and the storage
layer: Handler and Decorator for message processing, Tx and Msg for the
signed envelopes that travel through the engine, Condition and Address for
authorization, and the KV store interfaces that make speculative mutation
with commit-or-discard possible.

Every settlement operation runs through the same pipeline: the dispatcher in
the notary package verifies the envelope, consumes the transaction number
and routes the message to the handler registered for its path. Handlers
validate against client-signed statements before any write and mutate only
through a cache-wrapped store, so a failed operation never leaves partial
state behind.
*/
package otx
