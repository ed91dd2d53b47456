package token

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/store"
	"github.com/secureonelabs/opentxs-sub000/x/account"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testToken(value int64) *Token {
	return &Token{
		ID:         uuid.New(),
		Instrument: "USD",
		Series:     1,
		Value:      coin.NewCoin(value, 0, "USD"),
		ValidFrom:  otx.AsUnixTime(testTime.Add(-time.Hour)),
		ValidTo:    otx.AsUnixTime(testTime.Add(24 * time.Hour)),
	}
}

type tokenFixture struct {
	ctx      otx.Context
	db       otx.CacheableKVStore
	accounts account.Controller
	adapter  Adapter
	holder   otx.Address
}

func newTokenFixture(t testing.TB) *tokenFixture {
	t.Helper()
	f := &tokenFixture{
		ctx:      otx.WithTime(context.Background(), testTime),
		db:       store.MemStore(),
		accounts: account.NewController(),
	}
	f.adapter = NewAdapter(f.accounts, NewMintSigner(crypto.GenPrivKeyEd25519()))

	f.holder = crypto.GenPrivKeyEd25519().PublicKey().Address()
	err := f.accounts.Create(f.db, f.holder, &account.Account{
		Owner:      crypto.GenPrivKeyEd25519().PublicKey().Address(),
		Instrument: "USD",
		Balance:    coin.NewCoin(100, 0, "USD"),
	})
	require.NoError(t, err)
	return f
}

func (f *tokenFixture) balance(t testing.TB, id otx.Address) coin.Coin {
	t.Helper()
	c, err := f.accounts.Balance(f.db, id)
	require.NoError(t, err)
	return c
}

func TestIssueRedeemRoundtrip(t *testing.T) {
	f := newTokenFixture(t)
	tok := testToken(25)

	require.NoError(t, f.adapter.Issue(f.db, f.holder, tok))
	assert.NotEmpty(t, tok.Signature)
	assert.True(t, f.balance(t, f.holder).Equals(coin.NewCoin(75, 0, "USD")))
	reserve := account.ReserveAddress(account.ReserveMint, "USD")
	assert.True(t, f.balance(t, reserve).Equals(coin.NewCoin(25, 0, "USD")))

	other := crypto.GenPrivKeyEd25519().PublicKey().Address()
	require.NoError(t, f.accounts.Create(f.db, other, &account.Account{
		Owner:      other,
		Instrument: "USD",
		Balance:    coin.NewCoin(0, 0, "USD"),
	}))
	require.NoError(t, f.adapter.Redeem(f.ctx, f.db, other, tok))
	assert.True(t, f.balance(t, other).Equals(coin.NewCoin(25, 0, "USD")))
	assert.True(t, f.balance(t, reserve).Equals(coin.NewCoin(0, 0, "USD")))

	// spent marking is permanent
	err := f.adapter.Redeem(f.ctx, f.db, other, tok)
	assert.True(t, errors.ErrDuplicate.Is(err))
}

func TestIssueInsufficientFunds(t *testing.T) {
	f := newTokenFixture(t)
	tok := testToken(101)

	err := f.adapter.Issue(f.db, f.holder, tok)
	assert.True(t, errors.ErrInsufficientFunds.Is(err))
	assert.True(t, f.balance(t, f.holder).Equals(coin.NewCoin(100, 0, "USD")))
}

func TestRedeemRejectsTampering(t *testing.T) {
	f := newTokenFixture(t)
	tok := testToken(10)
	require.NoError(t, f.adapter.Issue(f.db, f.holder, tok))

	forged := *tok
	forged.Value = coin.NewCoin(90, 0, "USD")
	err := f.adapter.Redeem(f.ctx, f.db, f.holder, &forged)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	unsigned := *tok
	unsigned.Signature = nil
	err = f.adapter.Redeem(f.ctx, f.db, f.holder, &unsigned)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// a token from a different mint does not verify
	stranger := NewAdapter(f.accounts, NewMintSigner(crypto.GenPrivKeyEd25519()))
	err = stranger.Redeem(f.ctx, f.db, f.holder, tok)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestRedeemOutsideSeriesWindow(t *testing.T) {
	f := newTokenFixture(t)
	tok := testToken(10)
	require.NoError(t, f.adapter.Issue(f.db, f.holder, tok))

	late := otx.WithTime(context.Background(), testTime.Add(48*time.Hour))
	err := f.adapter.Redeem(late, f.db, f.holder, tok)
	assert.True(t, errors.ErrExpired.Is(err))

	early := otx.WithTime(context.Background(), testTime.Add(-2*time.Hour))
	err = f.adapter.Redeem(early, f.db, f.holder, tok)
	assert.True(t, errors.ErrExpired.Is(err))
}

func TestPurseTotal(t *testing.T) {
	p := Purse{Tokens: []Token{*testToken(50), *testToken(20), *testToken(5)}}
	require.NoError(t, p.Validate())
	total, err := p.Total()
	require.NoError(t, err)
	assert.True(t, total.Equals(coin.NewCoin(75, 0, "USD")))

	// duplicate ids are rejected
	p.Tokens[1].ID = p.Tokens[0].ID
	assert.Error(t, p.Validate())

	empty := Purse{}
	assert.True(t, errors.ErrEmpty.Is(empty.Validate()))
}
