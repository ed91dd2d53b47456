package ledger

import (
	"crypto/sha256"
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Kind selects which of an owner's ledgers an operation addresses.
type Kind byte

const (
	Inbox Kind = iota + 1
	Outbox
	Mailbox
)

func (k Kind) Validate() error {
	switch k {
	case Inbox, Outbox, Mailbox:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "ledger kind %d", k)
}

func (k Kind) String() string {
	switch k {
	case Inbox:
		return "inbox"
	case Outbox:
		return "outbox"
	case Mailbox:
		return "mailbox"
	}
	return "invalid"
}

// EntryKind is the record type of one ledger entry.
type EntryKind string

const (
	// PendingTransfer sits in the recipient's inbox until accepted.
	PendingTransfer EntryKind = "pending_transfer"
	// TransferSent mirrors a pending transfer in the sender's outbox.
	TransferSent EntryKind = "transfer_sent"
	// Receipt records a resolved operation awaiting acceptance, possibly
	// one of several sharing a Reference as a final receipt group.
	Receipt EntryKind = "receipt"
	// Voucher is a server drawn payment waiting in an inbox, its value
	// held by the reserve account named in From.
	Voucher EntryKind = "voucher"
	// Notice informs an identity of an operation outcome.
	Notice EntryKind = "notice"
	// NumberGrant carries fresh transaction numbers to an identity.
	NumberGrant EntryKind = "number_grant"
)

// Entry is one transaction record inside a ledger.
type Entry struct {
	Kind EntryKind `json:"kind"`
	// Number is the record's main transaction number, unique inside one
	// ledger.
	Number int64 `json:"number"`
	// ClosingNumber optionally names the number a final receipt closes.
	ClosingNumber int64 `json:"closing_number,omitempty"`
	// Reference points at the number of the operation this record
	// answers. Receipts sharing a Reference form a final receipt group.
	Reference int64 `json:"reference,omitempty"`
	// From and To are the counterparty accounts of a transfer, or the
	// affected party of a notice.
	From otx.Address `json:"from,omitempty"`
	To   otx.Address `json:"to,omitempty"`
	// Amount of a transfer or receipt, empty otherwise.
	Amount coin.Coin `json:"amount,omitempty"`
	// Numbers carried by a number grant.
	Numbers []int64 `json:"numbers,omitempty"`
	// Success flag of a notice.
	Success bool   `json:"success,omitempty"`
	Memo    string `json:"memo,omitempty"`
}

func (e *Entry) Validate() error {
	var err error
	switch e.Kind {
	case PendingTransfer, TransferSent, Receipt, Voucher, Notice, NumberGrant:
	default:
		err = errors.AppendField(err, "Kind", errors.ErrInput)
	}
	if e.Number <= 0 {
		err = errors.AppendField(err, "Number", errors.ErrNumber)
	}
	if e.Kind == NumberGrant && len(e.Numbers) == 0 {
		err = errors.AppendField(err, "Numbers", errors.ErrEmpty)
	}
	if !coin.IsEmpty(&e.Amount) {
		if verr := e.Amount.Validate(); verr != nil {
			err = errors.AppendField(err, "Amount", verr)
		}
	}
	return err
}

// Ledger is the stored collection of entries of one owner, ordered by
// insertion.
type Ledger struct {
	Entries []Entry `json:"entries"`
}

var _ otx.Persistent = (*Ledger)(nil)

func (l *Ledger) Marshal() ([]byte, error) {
	return json.Marshal(l)
}

func (l *Ledger) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, l)
}

func (l *Ledger) Validate() error {
	var err error
	seen := make(map[int64]bool, len(l.Entries))
	for i := range l.Entries {
		e := &l.Entries[i]
		if verr := e.Validate(); verr != nil {
			err = errors.AppendField(err, "Entries", errors.Wrapf(verr, "entry #%d", i))
		}
		if seen[e.Number] {
			err = errors.AppendField(err, "Entries", errors.Wrapf(errors.ErrDuplicate, "number %d", e.Number))
		}
		seen[e.Number] = true
	}
	return err
}

// Find returns the entry with the given number, nil if absent.
func (l *Ledger) Find(number int64) *Entry {
	for i := range l.Entries {
		if l.Entries[i].Number == number {
			return &l.Entries[i]
		}
	}
	return nil
}

// Group returns every receipt sharing the given reference number.
func (l *Ledger) Group(reference int64) []*Entry {
	var group []*Entry
	for i := range l.Entries {
		if l.Entries[i].Reference == reference {
			group = append(group, &l.Entries[i])
		}
	}
	return group
}

// Hash returns the sha256 of the ledger's canonical serialization. An
// empty ledger and a missing ledger hash the same.
func (l *Ledger) Hash() []byte {
	entries := l.Entries
	if entries == nil {
		entries = []Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return sum[:]
}
