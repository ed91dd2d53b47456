package funds

import (
	"encoding/binary"
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/orm"
)

// Cheque is a payment instrument drawn on an account. A personal cheque is
// written and signed by a client identity against one of its accounts and
// burns one of the writer's transaction numbers. A voucher is drawn by the
// notary itself on the voucher reserve and signed with the server key.
type Cheque struct {
	// Number is the transaction number the instrument rides under: one of
	// the writer's issued numbers for a personal cheque, a fresh server
	// number for a voucher. The voucher's redemption record is keyed by
	// it, so a voucher pays out at most once.
	Number int64 `json:"number"`
	// Account the cheque is drawn on.
	Account otx.Address `json:"account"`
	// WriterNym identifies the writing identity. Empty for vouchers.
	WriterNym otx.Address `json:"writer_nym,omitempty"`
	Amount    coin.Coin   `json:"amount"`
	// ExpiresAt ends the validity window.
	ExpiresAt otx.UnixTime `json:"expires_at"`
	// Voucher marks a cheque drawn on the voucher reserve.
	Voucher bool `json:"voucher,omitempty"`
	// Signature over SigningBytes: the writer's for a personal cheque,
	// the server's for a voucher.
	Signature crypto.Signature `json:"signature"`
}

func (c *Cheque) Validate() error {
	var err error
	if verr := c.Account.Validate(); verr != nil {
		err = errors.AppendField(err, "Account", verr)
	}
	if verr := c.Amount.Validate(); verr != nil {
		err = errors.AppendField(err, "Amount", verr)
	} else if !c.Amount.IsPositive() {
		err = errors.AppendField(err, "Amount", errors.ErrAmount)
	}
	if verr := c.ExpiresAt.Validate(); verr != nil {
		err = errors.AppendField(err, "ExpiresAt", verr)
	}
	if c.Number <= 0 {
		err = errors.AppendField(err, "Number", errors.ErrNumber)
	}
	if c.Voucher {
		if len(c.WriterNym) != 0 {
			err = errors.AppendField(err, "WriterNym", errors.Wrap(errors.ErrInput, "voucher with writer"))
		}
	} else {
		if verr := c.WriterNym.Validate(); verr != nil {
			err = errors.AppendField(err, "WriterNym", verr)
		}
	}
	if len(c.Signature) == 0 {
		err = errors.AppendField(err, "Signature", errors.ErrEmpty)
	}
	return err
}

// SigningBytes is the canonical serialization the writer signs, the cheque
// without its signature.
func (c *Cheque) SigningBytes() []byte {
	unsigned := *c
	unsigned.Signature = nil
	raw, err := json.Marshal(&unsigned)
	if err != nil {
		panic(err)
	}
	return raw
}

// redeemedVoucher marks a voucher number as paid out, forever. Vouchers
// carry no client number to consume, so this record is what stops a second
// presentation of the same instrument.
type redeemedVoucher struct {
	RedeemedAt otx.UnixTime `json:"redeemed_at"`
}

var _ orm.Model = (*redeemedVoucher)(nil)

func (r *redeemedVoucher) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func (r *redeemedVoucher) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, r)
}

func (r *redeemedVoucher) Validate() error {
	return r.RedeemedAt.Validate()
}

// voucherKey is the redemption record key of a voucher, its server number.
func voucherKey(number int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(number))
	return key
}
