/*
Package ledger stores the inbox, outbox and mailbox records of accounts and
identities.

Inboxes and outboxes belong to an account and hold pending transfers and
receipts until they are cleared by inbox processing. The mailbox belongs to
an identity and holds notices and number grants. Every ledger has a content
hash over its canonical serialization which is exchanged with the client on
each operation, so a desynchronized client is detected before any mutation.
*/
package ledger
