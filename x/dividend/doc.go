/*
Package dividend implements dividend payouts on asset instruments.

The issuer of an instrument pays a fixed amount per share outstanding. The
full payout leaves the payer account in one debit into the dividend
reserve, then fans out as voucher records into the holders' inboxes. What
cannot be delivered is refunded to the payer, so the payer's balance change
is exactly the payout no matter how the fan-out goes.
*/
package dividend
