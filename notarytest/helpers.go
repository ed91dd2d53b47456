package notarytest

import (
	"testing"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/nym"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

// NewCondition returns a unique test condition.
func NewCondition() otx.Condition {
	return crypto.GenPrivKeyEd25519().PublicKey().Condition()
}

// NewAccount creates a funded account owned by the given condition and
// returns its id.
func NewAccount(t testing.TB, db otx.KVStore, accounts account.Controller, owner otx.Condition, instrument string, balance int64) otx.Address {
	t.Helper()
	id := crypto.GenPrivKeyEd25519().PublicKey().Address()
	err := accounts.Create(db, id, &account.Account{
		Owner:      owner.Address(),
		Instrument: instrument,
		Balance:    coin.NewCoin(balance, 0, instrument),
	})
	if err != nil {
		t.Fatalf("cannot create account: %+v", err)
	}
	return id
}

// RegisterNym creates a nym ledger with the given numbers issued and
// available.
func RegisterNym(t testing.TB, db otx.KVStore, nyms nym.Controller, key *crypto.PrivateKey, numbers ...int64) otx.Address {
	t.Helper()
	addr := key.PublicKey().Address()
	if err := nyms.Register(db, addr, key.PublicKey()); err != nil {
		t.Fatalf("cannot register nym: %+v", err)
	}
	if len(numbers) > 0 {
		if err := nyms.AcceptIssuedNumbers(db, addr, numbers); err != nil {
			t.Fatalf("cannot grant numbers: %+v", err)
		}
	}
	return addr
}

// BalanceStatementFor builds a balance statement claiming the given
// post-operation balance with the account's current ledger hashes, minus
// any cleared entries.
func BalanceStatementFor(t testing.TB, db otx.ReadOnlyKVStore, ledgers ledger.Controller, acct otx.Address, newBalance coin.Coin, clearedInbox ...int64) statement.BalanceStatement {
	t.Helper()
	return statement.BalanceStatement{
		Account:       acct,
		NewBalance:    newBalance,
		InboxHash:     ledgerHashWithout(t, db, ledgers, ledger.Inbox, acct, clearedInbox),
		OutboxHash:    ledgerHashWithout(t, db, ledgers, ledger.Outbox, acct, nil),
		ClearedInbox:  clearedInbox,
		ClearedOutbox: nil,
	}
}

// TransactionStatementFor builds a transaction statement claiming the
// nym's current number sets with the given numbers taken out of available.
func TransactionStatementFor(t testing.TB, db otx.ReadOnlyKVStore, nyms nym.Controller, addr otx.Address, consuming ...int64) statement.TransactionStatement {
	t.Helper()
	l, err := nyms.Ledger(db, addr)
	if err != nil {
		t.Fatalf("cannot load nym ledger: %+v", err)
	}
	projected := l.Copy()
	for _, n := range consuming {
		kept := projected.Available[:0]
		for _, have := range projected.Available {
			if have != n {
				kept = append(kept, have)
			}
		}
		projected.Available = kept
	}
	return statement.TransactionStatement{
		Nym:         addr,
		NumbersHash: projected.NumbersHash(),
	}
}

func ledgerHashWithout(t testing.TB, db otx.ReadOnlyKVStore, ledgers ledger.Controller, kind ledger.Kind, owner otx.Address, cleared []int64) []byte {
	t.Helper()
	l, err := ledgers.Ledger(db, kind, owner)
	if err != nil {
		t.Fatalf("cannot load %s: %+v", kind, err)
	}
	var remaining ledger.Ledger
	remaining.Entries = make([]ledger.Entry, 0, len(l.Entries))
	for _, e := range l.Entries {
		keep := true
		for _, n := range cleared {
			if e.Number == n {
				keep = false
			}
		}
		if keep {
			remaining.Entries = append(remaining.Entries, e)
		}
	}
	return remaining.Hash()
}
