package notarytest

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Tx is a transaction stub carrying a single message, for calling handlers
// directly without building a signed envelope.
type Tx struct {
	Msg otx.Msg
}

var _ otx.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (otx.Msg, error) {
	return tx.Msg, nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrState, "no message")
	}
	return tx.Msg.Marshal()
}

func (tx *Tx) Unmarshal([]byte) error {
	return errors.Wrap(errors.ErrHuman, "not implemented in a stub")
}
