/*
Package statement verifies client-signed balance and transaction
statements against independently recomputed server state.

Verification is pure: it reads the current account, ledger and number
state, computes what the world must look like after the requested
operation, and compares the client's claim byte for byte. This is the
cheap falsifiable pre-check every settlement handler runs before it opens
any mutation, so the dominant rejection path never writes.
*/
package statement
