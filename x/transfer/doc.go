/*
Package transfer implements account to account transfers.

A transfer does not credit the recipient directly. The amount moves into a
per instrument escrow reserve and a pending record lands in the
recipient's inbox, mirrored in the sender's outbox. Settlement completes
when the recipient processes the inbox entry, which is also when the
sender's transaction number finally closes.
*/
package transfer
