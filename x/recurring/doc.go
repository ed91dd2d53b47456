/*
Package recurring submits market offers, payment plans and smart contracts
to the external scheduler and cancels live items.

A submission carries one fully signed item. Every party committed an
opening number and one closing number per involved account; submission
consumes them all, so each party can always sign off a final receipt when
the item or one of its accounts leaves the recurring system. The scheduler
owns the item afterwards. Cancellation takes the item back out and settles
the number bookkeeping in reverse.
*/
package recurring
