package nym

import (
	"crypto/sha256"
	"encoding/json"
	"sort"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Ledger is the stored number state of one identity. The three sets are
// kept sorted and duplicate free. Available and OpenCron are always subsets
// of Issued.
type Ledger struct {
	// Pubkey verifies the identity's envelope signatures.
	Pubkey crypto.PublicKey `json:"pubkey"`
	// Issued are the numbers this identity is responsible for.
	Issued []int64 `json:"issued"`
	// Available are issued numbers not committed to an in-flight operation.
	Available []int64 `json:"available"`
	// OpenCron are numbers opening a still-active recurring item.
	OpenCron []int64 `json:"open_cron"`
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
	if verr := l.Pubkey.Validate(); verr != nil {
		err = errors.AppendField(err, "Pubkey", verr)
	}
	if !sortedUnique(l.Issued) {
		err = errors.AppendField(err, "Issued", errors.ErrModel)
	}
	if !sortedUnique(l.Available) {
		err = errors.AppendField(err, "Available", errors.ErrModel)
	}
	if !sortedUnique(l.OpenCron) {
		err = errors.AppendField(err, "OpenCron", errors.ErrModel)
	}
	for _, n := range l.Available {
		if !containsNumber(l.Issued, n) {
			err = errors.AppendField(err, "Available", errors.Wrapf(errors.ErrModel, "number %d not issued", n))
		}
	}
	for _, n := range l.OpenCron {
		if !containsNumber(l.Issued, n) {
			err = errors.AppendField(err, "OpenCron", errors.Wrapf(errors.ErrModel, "number %d not issued", n))
		}
	}
	return err
}

// Copy returns a deep copy of the ledger.
func (l *Ledger) Copy() *Ledger {
	return &Ledger{
		Pubkey:    append(crypto.PublicKey(nil), l.Pubkey...),
		Issued:    append([]int64(nil), l.Issued...),
		Available: append([]int64(nil), l.Available...),
		OpenCron:  append([]int64(nil), l.OpenCron...),
	}
}

// NumbersHash returns the sha256 of the canonical number-set serialization.
// It is exchanged in transaction statements so account-less operations can
// detect a desynchronized client.
func (l *Ledger) NumbersHash() []byte {
	raw, err := json.Marshal(struct {
		Issued    []int64 `json:"issued"`
		Available []int64 `json:"available"`
	}{
		Issued:    emptyNotNil(l.Issued),
		Available: emptyNotNil(l.Available),
	})
	if err != nil {
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return sum[:]
}

func emptyNotNil(ns []int64) []int64 {
	if ns == nil {
		return []int64{}
	}
	return ns
}

// containsNumber reports membership in a sorted set.
func containsNumber(set []int64, n int64) bool {
	i := sort.Search(len(set), func(i int) bool { return set[i] >= n })
	return i < len(set) && set[i] == n
}

// insertNumber adds n keeping the set sorted. Inserting an existing number
// is a no-op.
func insertNumber(set []int64, n int64) []int64 {
	i := sort.Search(len(set), func(i int) bool { return set[i] >= n })
	if i < len(set) && set[i] == n {
		return set
	}
	set = append(set, 0)
	copy(set[i+1:], set[i:])
	set[i] = n
	return set
}

// removeNumber deletes n from a sorted set, reporting whether it was there.
func removeNumber(set []int64, n int64) ([]int64, bool) {
	i := sort.Search(len(set), func(i int) bool { return set[i] >= n })
	if i == len(set) || set[i] != n {
		return set, false
	}
	return append(set[:i], set[i+1:]...), true
}

func sortedUnique(set []int64) bool {
	for i := 1; i < len(set); i++ {
		if set[i-1] >= set[i] {
			return false
		}
	}
	return true
}
