/*
Package token orchestrates the cash token lifecycle: signing and funding
at withdrawal, verification and spent marking at deposit.

The signing primitive is an external collaborator behind the Signer
interface. The engine never implements the blinding mathematics, it only
sequences when a token is signed, which reserve account absorbs its value
and when it is irrevocably marked spent.
*/
package token
