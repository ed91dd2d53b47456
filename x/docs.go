/*
Package x contains the settlement extensions and the interfaces they share.

Each subpackage covers one family of transaction kinds. A package exposes
its messages (msg.go), the stored models (model.go), a controller with the
business logic other packages may call (controller.go), and the handlers
that wire the messages into the notary router (handler.go, RegisterRoutes).

The interfaces in this root package, like Authenticator, let the
extensions cooperate without importing each other.
*/
package x
