/*
Package orm provides an easy to use db wrapper.

Break state space into prefixed sections called Buckets. Each bucket contains
only one type of model, addressed by a primary key. Models know how to
serialize and validate themselves; the bucket validates on every Put so no
invalid model is ever persisted.

The notary engine keys all entities by stable ids (account address, nym
address, transaction number) and looks them up through buckets. No entity
holds a live pointer to another, only an id plus an accessor through the
owning package.
*/
package orm
