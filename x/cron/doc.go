/*
Package cron defines the recurring item scheduler collaborator.

Market offers, payment plans and smart contracts outlive the notarization
that submits them. The engine validates an item, hands it to the Scheduler
and reacts to the boolean outcome. The matching and expiration loop is not
part of the engine; the store backed scheduler here only keeps the live
items so cancellation and lookups work.
*/
package cron
