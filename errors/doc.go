/*
Package errors implements the error kinds used across the notary engine.

The engine never signals a failure by anything other than an error return
value; nothing is thrown past the dispatcher. Every error created during
runtime should wrap one of the registered root errors, so that the
dispatcher can classify the failure (authorization, number state, statement
mismatch, funds, collaborator) when it builds the signed rejection response.

Test against a root error kind with its Is method:

	if errors.ErrNotFound.Is(err) { ... }
*/
package errors
