/*
Package notarytest provides test doubles shared by the extension and
dispatcher tests: a canned Authenticator, a transaction stub wrapping a
single message, and helpers to build funded fixtures.
*/
package notarytest
