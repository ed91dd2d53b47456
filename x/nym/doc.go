/*
Package nym tracks the transaction number ledger of every client identity.

Each identity owns three number sets: issued (numbers the identity is
responsible for), available (the subset of issued not committed to an
in-flight operation) and open recurring (numbers tied to a live recurring
item). A number leaves available the moment a request uses it and leaves
issued only when the operation it opened is terminally resolved. A rejected
operation keeps its number issued but not available, so the client must
fetch a fresh number instead of retrying the same one.
*/
package nym
