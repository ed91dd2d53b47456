package token

import (
	"encoding/json"

	"github.com/google/uuid"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Token is one cash unit of a denomination series. Its value lives in the
// mint reserve from signing until redemption.
type Token struct {
	ID         uuid.UUID `json:"id"`
	Instrument string    `json:"instrument"`
	// Series names the denomination series the token was minted under.
	Series int64 `json:"series"`
	Value  coin.Coin `json:"value"`
	// ValidFrom and ValidTo bound the series validity window. A token is
	// only redeemable inside it.
	ValidFrom otx.UnixTime `json:"valid_from"`
	ValidTo   otx.UnixTime `json:"valid_to"`
	// Signature is the mint's signature over SigningBytes, empty until
	// the token is issued.
	Signature crypto.Signature `json:"signature,omitempty"`
}

func (t *Token) Validate() error {
	var err error
	if t.ID == uuid.Nil {
		err = errors.AppendField(err, "ID", errors.ErrEmpty)
	}
	if !coin.IsCC(t.Instrument) {
		err = errors.AppendField(err, "Instrument", errors.ErrInput)
	}
	if t.Series <= 0 {
		err = errors.AppendField(err, "Series", errors.ErrInput)
	}
	if verr := t.Value.Validate(); verr != nil {
		err = errors.AppendField(err, "Value", verr)
	} else if !t.Value.IsPositive() {
		err = errors.AppendField(err, "Value", errors.ErrAmount)
	}
	if t.Value.Ticker != t.Instrument {
		err = errors.AppendField(err, "Value", errors.Wrap(errors.ErrType, "instrument mismatch"))
	}
	if verr := t.ValidFrom.Validate(); verr != nil {
		err = errors.AppendField(err, "ValidFrom", verr)
	}
	if verr := t.ValidTo.Validate(); verr != nil {
		err = errors.AppendField(err, "ValidTo", verr)
	}
	if t.ValidTo <= t.ValidFrom {
		err = errors.AppendField(err, "ValidTo", errors.ErrState)
	}
	return err
}

// SigningBytes returns the canonical serialization the mint signs, the
// token without its signature.
func (t *Token) SigningBytes() []byte {
	unsigned := *t
	unsigned.Signature = nil
	raw, err := json.Marshal(&unsigned)
	if err != nil {
		panic(err)
	}
	return raw
}

// Purse is a bundle of tokens moving together through one withdrawal or
// deposit.
type Purse struct {
	Tokens []Token `json:"tokens"`
}

func (p *Purse) Validate() error {
	if len(p.Tokens) == 0 {
		return errors.Wrap(errors.ErrEmpty, "purse")
	}
	var err error
	seen := make(map[uuid.UUID]bool, len(p.Tokens))
	for i := range p.Tokens {
		if verr := p.Tokens[i].Validate(); verr != nil {
			err = errors.AppendField(err, "Tokens", errors.Wrapf(verr, "token #%d", i))
		}
		if seen[p.Tokens[i].ID] {
			err = errors.AppendField(err, "Tokens", errors.Wrapf(errors.ErrDuplicate, "token #%d", i))
		}
		seen[p.Tokens[i].ID] = true
	}
	return err
}

// Total sums the purse's token values. All tokens must share one
// instrument.
func (p *Purse) Total() (coin.Coin, error) {
	var total coin.Coin
	for i := range p.Tokens {
		var err error
		total, err = total.Add(p.Tokens[i].Value)
		if err != nil {
			return coin.Coin{}, err
		}
	}
	return total, nil
}

// spentRecord marks one token id as spent, forever.
type spentRecord struct {
	SpentAt otx.UnixTime `json:"spent_at"`
}

var _ otx.Persistent = (*spentRecord)(nil)

func (r *spentRecord) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func (r *spentRecord) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, r)
}

func (r *spentRecord) Validate() error {
	return r.SpentAt.Validate()
}
