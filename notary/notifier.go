package notary

import (
	otx "github.com/secureonelabs/opentxs-sub000"
)

// Notifier pushes a hint to a nym that its mailbox changed. Delivery is
// best effort, clients poll their mailboxes regardless.
type Notifier interface {
	Notify(nym otx.Address)
}

// NopNotifier ignores all notifications.
type NopNotifier struct{}

var _ Notifier = NopNotifier{}

func (NopNotifier) Notify(otx.Address) {}

// FuncNotifier adapts a plain function to the Notifier interface.
type FuncNotifier func(nym otx.Address)

var _ Notifier = FuncNotifier(nil)

func (f FuncNotifier) Notify(nym otx.Address) {
	if f != nil {
		f(nym)
	}
}
