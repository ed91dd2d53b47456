package otx

import (
	"reflect"

	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Marshaller is anything that can be represented in binary.
//
// Marshal may validate the data before serializing it and unless you
// previously validated the struct, errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal.
//
// This is separated from Marshaller, as this almost always requires a
// pointer, and functions that only need to marshal bytes can use the
// Marshaller interface to access non-pointers.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Disposition declares how the dispatcher resolves the main transaction
// number once a message of this kind reaches a terminal state.
type Disposition int

const (
	// OneShot kinds are resolved in a single notarization. The main
	// number is closed no matter the settlement outcome.
	OneShot Disposition = iota

	// LongLived kinds leave an entity behind on success (a pending
	// transfer, an item in the recurring scheduler). The main number is
	// closed on failure only; on success it stays issued until the
	// entity is cleared by a later accept or final-receipt cycle.
	LongLived
)

// Msg is a request for the notary to take an action (make a state
// transition). It is just the request, and must be validated by the
// Handlers. All authentication information is in the wrapping Tx.
type Msg interface {
	Persistent

	// Path returns the routing path of the message. This is used by the
	// Router to locate the proper Handler. Must be alphanumeric
	// [0-9A-Za-z_\-]+
	Path() string

	// Disposition returns the number-ledger category of this kind.
	// Having this on the message forces every new kind to declare how
	// its main number resolves.
	Disposition() Disposition

	// Validate performs a sanity check on the message content that does
	// not require any state.
	Validate() error
}

// Tx represents the data sent from the client to the notary. It includes the
// actual message, along with information needed to authenticate the sender.
//
// The concrete envelope lives in the notary package; handlers only ever see
// this interface plus the statement extensions they require.
type Tx interface {
	Persistent

	// GetMsg returns the action we wish to execute.
	GetMsg() (Msg, error)
}

// TxDecoder can parse bytes into a Tx.
type TxDecoder func(txBytes []byte) (Tx, error)

// LoadMsg extracts the message from the transaction and unpacks it into the
// given destination. The message is validated before returning.
func LoadMsg(tx Tx, destination Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrState, "empty message")
	}

	if !reflect.TypeOf(msg).AssignableTo(reflect.TypeOf(destination)) {
		return errors.Wrapf(errors.ErrType, "want %T, got %T", destination, msg)
	}
	reflect.ValueOf(destination).Elem().Set(reflect.ValueOf(msg).Elem())

	if err := destination.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}
