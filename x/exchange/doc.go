/*
Package exchange implements basket currency exchange.

A basket instrument is backed by fixed ratios of component instruments. An
exchange-in debits every component leg from the requester into the basket
reserve and credits freshly issued basket units; an exchange-out runs every
leg the other way. All legs settle together or not at all.
*/
package exchange
