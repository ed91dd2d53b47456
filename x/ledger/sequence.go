package ledger

import (
	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/orm"
)

// NumberSource hands out server issued transaction numbers: the numbers of
// receipts, notices and vouchers the notary itself writes into ledgers,
// and the numbers granted to clients. One shared sequence keeps them all
// unique.
type NumberSource struct {
	seq orm.Sequence
}

func NewNumberSource() NumberSource {
	return NumberSource{seq: orm.NewSequence("ledger", "txnum")}
}

// Next returns a fresh, never before used transaction number.
func (s NumberSource) Next(db otx.KVStore) (int64, error) {
	n, err := s.seq.NextInt(db)
	if err != nil {
		return 0, errors.Wrap(err, "number sequence")
	}
	return n, nil
}

// NextBatch returns count fresh numbers.
func (s NumberSource) NextBatch(db otx.KVStore, count int) ([]int64, error) {
	ns := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		n, err := s.Next(db)
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return ns, nil
}

// Initializer seeds the number sequence past any numbers handed out in
// genesis grants.
type Initializer struct{}

var _ otx.Initializer = (*Initializer)(nil)

// FromGenesis reads the "first_server_number" option:
//
//	"first_server_number": 1000
func (Initializer) FromGenesis(opts otx.Options, db otx.KVStore) error {
	var first int64
	if err := opts.ReadOptions("first_server_number", &first); err != nil {
		return errors.Wrap(err, "cannot load first server number")
	}
	if first <= 0 {
		return nil
	}
	src := NewNumberSource()
	return src.seq.Advance(db, first-1)
}
