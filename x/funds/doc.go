/*
Package funds implements deposits and withdrawals.

A deposit presents either a cheque style instrument or a purse of cash
tokens. A withdrawal either draws a voucher on the voucher reserve or
mints cash tokens. Either way every leg is backed one to one by a reserve
account, and a failure on any token or leg aborts the whole bundle.
*/
package funds
