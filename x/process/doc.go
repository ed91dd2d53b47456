/*
Package process clears inbox and mailbox records.

Inbox processing accepts or rejects pending transfers, vouchers and
receipts sitting in one account's inbox. Accepting a pending transfer
releases the escrowed amount, clears the sender's outbox mirror and closes
the sender's number; accepting a receipt closes the matching closing
number. Receipts that share a reference form a final receipt group and
must be accepted together.

Mailbox processing consumes notices and number grants addressed to an
identity. Accepting a grant moves the carried numbers into issued and
available in one step and leaves a durable success notice behind, so a
client that missed the direct reply can still learn the grant went
through.
*/
package process
