package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/store"
)

func newAccountID() otx.Address {
	return crypto.GenPrivKeyEd25519().PublicKey().Address()
}

func makeAccount(t testing.TB, db otx.KVStore, ctrl Controller, instrument string, balance int64) otx.Address {
	t.Helper()
	id := newAccountID()
	a := &Account{
		Owner:      newAccountID(),
		Instrument: instrument,
		Balance:    coin.NewCoin(balance, 0, instrument),
	}
	require.NoError(t, ctrl.Create(db, id, a))
	return id
}

func TestMoveCoins(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	src := makeAccount(t, db, ctrl, "USD", 100)
	dest := makeAccount(t, db, ctrl, "USD", 0)

	require.NoError(t, ctrl.MoveCoins(db, src, dest, coin.NewCoin(40, 0, "USD")))

	got, err := ctrl.Balance(db, src)
	require.NoError(t, err)
	assert.True(t, got.Equals(coin.NewCoin(60, 0, "USD")))
	got, err = ctrl.Balance(db, dest)
	require.NoError(t, err)
	assert.True(t, got.Equals(coin.NewCoin(40, 0, "USD")))
}

func TestMoveCoinsRejections(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	usd := makeAccount(t, db, ctrl, "USD", 100)
	usd2 := makeAccount(t, db, ctrl, "USD", 0)
	eur := makeAccount(t, db, ctrl, "EUR", 0)

	cases := map[string]struct {
		src, dest otx.Address
		amount    coin.Coin
		wantErr   *errors.Error
	}{
		"insufficient funds": {
			src: usd, dest: usd2,
			amount:  coin.NewCoin(101, 0, "USD"),
			wantErr: errors.ErrInsufficientFunds,
		},
		"instrument mismatch": {
			src: usd, dest: eur,
			amount:  coin.NewCoin(1, 0, "USD"),
			wantErr: errors.ErrType,
		},
		"zero amount": {
			src: usd, dest: usd2,
			amount:  coin.NewCoin(0, 0, "USD"),
			wantErr: errors.ErrAmount,
		},
		"negative amount": {
			src: usd, dest: usd2,
			amount:  coin.NewCoin(-5, 0, "USD"),
			wantErr: errors.ErrAmount,
		},
		"self move": {
			src: usd, dest: usd,
			amount:  coin.NewCoin(1, 0, "USD"),
			wantErr: errors.ErrInput,
		},
		"unknown destination": {
			src: usd, dest: newAccountID(),
			amount:  coin.NewCoin(1, 0, "USD"),
			wantErr: errors.ErrNotFound,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := ctrl.MoveCoins(db, tc.src, tc.dest, tc.amount)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)

			// no partial mutation
			got, err := ctrl.Balance(db, usd)
			require.NoError(t, err)
			assert.True(t, got.Equals(coin.NewCoin(100, 0, "USD")))
		})
	}
}

func TestIssuerAccountGoesNegative(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	issuer := newAccountID()
	require.NoError(t, ctrl.Create(db, issuer, &Account{
		Owner:         newAccountID(),
		Instrument:    "SHR",
		Balance:       coin.NewCoin(0, 0, "SHR"),
		AllowNegative: true,
	}))

	// shares outstanding recorded as a negative balance
	require.NoError(t, ctrl.IssueCoins(db, issuer, coin.NewCoin(-1000, 0, "SHR")))
	got, err := ctrl.Balance(db, issuer)
	require.NoError(t, err)
	assert.True(t, got.Equals(coin.NewCoin(-1000, 0, "SHR")))

	// ordinary accounts may not
	plain := makeAccount(t, db, ctrl, "SHR", 0)
	err = ctrl.IssueCoins(db, plain, coin.NewCoin(-1, 0, "SHR"))
	assert.True(t, errors.ErrInsufficientFunds.Is(err))
}

func TestEnsureReserve(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()

	id, err := ctrl.EnsureReserve(db, ReserveMint, "USD")
	require.NoError(t, err)
	again, err := ctrl.EnsureReserve(db, ReserveMint, "USD")
	require.NoError(t, err)
	assert.True(t, id.Equals(again))

	a, err := ctrl.Account(db, id)
	require.NoError(t, err)
	assert.True(t, a.Internal)
	assert.Equal(t, "USD", a.Instrument)

	// distinct per kind and per instrument
	other, err := ctrl.EnsureReserve(db, ReserveVoucher, "USD")
	require.NoError(t, err)
	assert.False(t, id.Equals(other))
	other, err = ctrl.EnsureReserve(db, ReserveMint, "EUR")
	require.NoError(t, err)
	assert.False(t, id.Equals(other))
}

func TestDefinitions(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	issuer := newAccountID()

	def := &Definition{ID: "BSK", Issuer: issuer, Basket: []Component{
		{Instrument: "USD", Weight: 2},
		{Instrument: "EUR", Weight: 1},
	}}
	require.NoError(t, ctrl.CreateDefinition(db, def))

	got, err := ctrl.Definition(db, "BSK")
	require.NoError(t, err)
	assert.True(t, got.IsBasket())
	assert.Equal(t, def.Basket, got.Basket)

	err = ctrl.CreateDefinition(db, def)
	assert.True(t, errors.ErrDuplicate.Is(err))

	_, err = ctrl.Definition(db, "NOPE")
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestIterateHolders(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController()
	a := makeAccount(t, db, ctrl, "USD", 10)
	b := makeAccount(t, db, ctrl, "USD", 20)
	makeAccount(t, db, ctrl, "EUR", 30)
	_, err := ctrl.EnsureReserve(db, ReserveMint, "USD")
	require.NoError(t, err)

	var total int64
	seen := make(map[string]bool)
	err = ctrl.IterateHolders(db, "USD", func(id otx.Address, acct *Account) error {
		seen[id.String()] = true
		total += acct.Balance.Whole
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)
	assert.True(t, seen[a.String()])
	assert.True(t, seen[b.String()])
	assert.Len(t, seen, 2)
}
