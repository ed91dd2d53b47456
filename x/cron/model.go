package cron

import (
	"encoding/binary"
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// ItemKind is the recurring item family.
type ItemKind string

const (
	MarketOffer   ItemKind = "market_offer"
	PaymentPlan   ItemKind = "payment_plan"
	SmartContract ItemKind = "smart_contract"
)

func (k ItemKind) Validate() error {
	switch k {
	case MarketOffer, PaymentPlan, SmartContract:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "item kind %q", k)
}

// Party is one participant of a recurring item. Every party commits one
// opening number and one closing number per involved account.
type Party struct {
	Nym otx.Address `json:"nym"`
	// Accounts this party brings into the item.
	Accounts []otx.Address `json:"accounts"`
	// OpeningNumber closes when the item leaves the scheduler.
	OpeningNumber int64 `json:"opening_number"`
	// ClosingNumbers close one by one as each account's final receipt is
	// accepted. Exactly one per account.
	ClosingNumbers []int64 `json:"closing_numbers"`
	// Signature of this party over the item's signing bytes.
	Signature crypto.Signature `json:"signature"`
}

func (p *Party) Validate() error {
	var err error
	if verr := p.Nym.Validate(); verr != nil {
		err = errors.AppendField(err, "Nym", verr)
	}
	for i, a := range p.Accounts {
		if verr := a.Validate(); verr != nil {
			err = errors.AppendField(err, "Accounts", errors.Wrapf(verr, "account #%d", i))
		}
	}
	if p.OpeningNumber <= 0 {
		err = errors.AppendField(err, "OpeningNumber", errors.ErrNumber)
	}
	if len(p.ClosingNumbers) != len(p.Accounts) {
		err = errors.AppendField(err, "ClosingNumbers",
			errors.Wrapf(errors.ErrNumber, "%d closing numbers for %d accounts",
				len(p.ClosingNumbers), len(p.Accounts)))
	}
	for i, n := range p.ClosingNumbers {
		if n <= 0 {
			err = errors.AppendField(err, "ClosingNumbers", errors.Wrapf(errors.ErrNumber, "number #%d", i))
		}
	}
	if len(p.Signature) == 0 {
		err = errors.AppendField(err, "Signature", errors.ErrEmpty)
	}
	return err
}

// Numbers returns every number this party commits to the item.
func (p *Party) Numbers() []int64 {
	ns := make([]int64, 0, len(p.ClosingNumbers)+1)
	ns = append(ns, p.OpeningNumber)
	return append(ns, p.ClosingNumbers...)
}

// Item is a fully formed recurring item. Once submitted the scheduler owns
// it; the engine only looks items up by opening number.
type Item struct {
	Kind ItemKind `json:"kind"`
	// OpeningNumber is the submitting party's opening number and the
	// item's identity inside the scheduler.
	OpeningNumber int64   `json:"opening_number"`
	Parties       []Party `json:"parties"`
	// Payload carries the instrument body. The engine treats it as
	// opaque; contract execution semantics live outside.
	Payload json.RawMessage `json:"payload,omitempty"`
}

var _ otx.Persistent = (*Item)(nil)

func (it *Item) Marshal() ([]byte, error) {
	return json.Marshal(it)
}

func (it *Item) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, it)
}

func (it *Item) Validate() error {
	var err error
	if verr := it.Kind.Validate(); verr != nil {
		err = errors.AppendField(err, "Kind", verr)
	}
	if it.OpeningNumber <= 0 {
		err = errors.AppendField(err, "OpeningNumber", errors.ErrNumber)
	}
	if len(it.Parties) == 0 {
		err = errors.AppendField(err, "Parties", errors.ErrEmpty)
	}
	opens := false
	for i := range it.Parties {
		if verr := it.Parties[i].Validate(); verr != nil {
			err = errors.AppendField(err, "Parties", errors.Wrapf(verr, "party #%d", i))
		}
		if it.Parties[i].OpeningNumber == it.OpeningNumber {
			opens = true
		}
	}
	if len(it.Parties) > 0 && !opens {
		err = errors.AppendField(err, "OpeningNumber", errors.Wrap(errors.ErrNumber, "no party opens the item"))
	}
	return err
}

// Party returns the participant with the given nym, nil if absent.
func (it *Item) Party(nym otx.Address) *Party {
	for i := range it.Parties {
		if it.Parties[i].Nym.Equals(nym) {
			return &it.Parties[i]
		}
	}
	return nil
}

// SigningBytes is the canonical serialization every party signs, the item
// with all signatures blanked.
func (it *Item) SigningBytes() []byte {
	unsigned := *it
	unsigned.Parties = make([]Party, len(it.Parties))
	copy(unsigned.Parties, it.Parties)
	for i := range unsigned.Parties {
		unsigned.Parties[i].Signature = nil
	}
	raw, err := json.Marshal(&unsigned)
	if err != nil {
		panic(err)
	}
	return raw
}

func itemKey(openingNumber int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(openingNumber))
	return key
}
