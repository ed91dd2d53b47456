/*
Package account stores custodial accounts and instrument definitions.

All balance changes go through the controller, which enforces the account
sign policy and keeps every movement a paired debit plus credit. Reserve
accounts are internal, derived from well known conditions, and absorb the
backing value of vouchers, minted cash, escrowed transfers and dividend
payouts.
*/
package account
