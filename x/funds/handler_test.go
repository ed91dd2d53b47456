package funds

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/notarytest"
	"github.com/secureonelabs/opentxs-sub000/orm"
	"github.com/secureonelabs/opentxs-sub000/store"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/nym"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
	"github.com/secureonelabs/opentxs-sub000/x/token"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx      otx.Context
	db       otx.CacheableKVStore
	auth     *notarytest.Auth
	accounts account.Controller
	ledgers  ledger.Controller
	nyms     nym.Controller
	adapter  token.Adapter
	server   *crypto.PrivateKey
	deposit  *depositHandler
	withdraw *withdrawHandler

	aliceKey *crypto.PrivateKey
	alice    otx.Address
	acct     otx.Address
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      otx.WithTime(context.Background(), testTime),
		db:       store.MemStore(),
		accounts: account.NewController(),
		ledgers:  ledger.NewController(),
		nyms:     nym.NewController(),
		server:   crypto.GenPrivKeyEd25519(),
		aliceKey: crypto.GenPrivKeyEd25519(),
	}
	f.adapter = token.NewAdapter(f.accounts, token.NewMintSigner(f.server))
	verifier := statement.NewVerifier(f.accounts, f.ledgers, f.nyms)
	f.auth = &notarytest.Auth{Signer: f.aliceKey.PublicKey().Condition()}
	f.deposit = &depositHandler{
		auth: f.auth, accounts: f.accounts, nyms: f.nyms,
		verifier: verifier, adapter: f.adapter,
		redeemed: orm.NewModelBucket("redeemed"), serverKey: f.server,
	}
	f.withdraw = &withdrawHandler{
		auth: f.auth, accounts: f.accounts,
		verifier: verifier, adapter: f.adapter,
		numbers: ledger.NewNumberSource(), serverKey: f.server,
	}
	f.alice = notarytest.RegisterNym(t, f.db, f.nyms, f.aliceKey, 1, 2, 3)
	f.acct = notarytest.NewAccount(t, f.db, f.accounts, f.aliceKey.PublicKey().Condition(), "USD", 100)
	return f
}

func (f *fixture) balance(t testing.TB, id otx.Address) coin.Coin {
	t.Helper()
	c, err := f.accounts.Balance(f.db, id)
	require.NoError(t, err)
	return c
}

// writeCheque builds a cheque signed by the given key over its account.
func writeCheque(t testing.TB, key *crypto.PrivateKey, acct otx.Address, number, amount int64) *Cheque {
	t.Helper()
	c := &Cheque{
		Number:    number,
		Account:   acct,
		WriterNym: key.PublicKey().Address(),
		Amount:    coin.NewCoin(amount, 0, "USD"),
		ExpiresAt: otx.AsUnixTime(testTime.Add(24 * time.Hour)),
	}
	sig, err := key.Sign(c.SigningBytes())
	require.NoError(t, err)
	c.Signature = sig
	return c
}

func unsignedToken(value int64) token.Token {
	return token.Token{
		ID:         uuid.New(),
		Instrument: "USD",
		Series:     1,
		Value:      coin.NewCoin(value, 0, "USD"),
		ValidFrom:  otx.AsUnixTime(testTime.Add(-time.Hour)),
		ValidTo:    otx.AsUnixTime(testTime.Add(24 * time.Hour)),
	}
}

func TestWithdrawCashScenario(t *testing.T) {
	f := newFixture(t)
	msg := &WithdrawMsg{
		Account: f.acct,
		Purse: &token.Purse{Tokens: []token.Token{
			unsignedToken(50), unsignedToken(20), unsignedToken(5),
		}},
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.acct, coin.NewCoin(25, 0, "USD")),
	}
	tx := &notarytest.Tx{Msg: msg}

	_, err := f.withdraw.Check(f.ctx, f.db, tx)
	require.NoError(t, err)
	res, err := f.withdraw.Deliver(f.ctx, f.db, tx)
	require.NoError(t, err)

	assert.True(t, f.balance(t, f.acct).Equals(coin.NewCoin(25, 0, "USD")))
	mint := account.ReserveAddress(account.ReserveMint, "USD")
	assert.True(t, f.balance(t, mint).Equals(coin.NewCoin(75, 0, "USD")))

	var signed token.Purse
	require.NoError(t, json.Unmarshal(res.Data, &signed))
	require.Len(t, signed.Tokens, 3)
	total, err := signed.Total()
	require.NoError(t, err)
	assert.True(t, total.Equals(coin.NewCoin(75, 0, "USD")))
	for i := range signed.Tokens {
		assert.NotEmpty(t, signed.Tokens[i].Signature, "token #%d", i)
	}
}

func TestWithdrawCashAbortsWholeBundle(t *testing.T) {
	f := newFixture(t)
	// three tokens of 50 each cannot be funded from a balance of 100
	msg := &WithdrawMsg{
		Account: f.acct,
		Purse: &token.Purse{Tokens: []token.Token{
			unsignedToken(50), unsignedToken(50), unsignedToken(50),
		}},
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.acct, coin.NewCoin(-50, 0, "USD")),
	}

	cache := f.db.CacheWrap()
	_, err := f.withdraw.Deliver(f.ctx, cache, &notarytest.Tx{Msg: msg})
	assert.True(t, errors.ErrInsufficientFunds.Is(err), "%+v", err)
	cache.Discard()

	// no partial bundle: the first two token debits are discarded
	assert.True(t, f.balance(t, f.acct).Equals(coin.NewCoin(100, 0, "USD")))
}

func TestWithdrawVoucherAndDepositIt(t *testing.T) {
	f := newFixture(t)
	amount := coin.NewCoin(30, 0, "USD")
	msg := &WithdrawMsg{
		Account:       f.acct,
		VoucherAmount: &amount,
		Statement:     notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.acct, coin.NewCoin(70, 0, "USD")),
	}
	res, err := f.withdraw.Deliver(f.ctx, f.db, &notarytest.Tx{Msg: msg})
	require.NoError(t, err)

	reserve := account.ReserveAddress(account.ReserveVoucher, "USD")
	assert.True(t, f.balance(t, reserve).Equals(amount))

	var voucher Cheque
	require.NoError(t, json.Unmarshal(res.Data, &voucher))
	assert.True(t, voucher.Voucher)
	assert.True(t, voucher.Number > 0, "voucher carries a server number")
	require.NoError(t, voucher.Validate())

	// another client deposits the voucher
	bobKey := crypto.GenPrivKeyEd25519()
	notarytest.RegisterNym(t, f.db, f.nyms, bobKey, 9)
	bobAcct := notarytest.NewAccount(t, f.db, f.accounts, bobKey.PublicKey().Condition(), "USD", 0)
	f.auth.Signer = bobKey.PublicKey().Condition()

	dep := &DepositMsg{
		Account:   bobAcct,
		Cheque:    &voucher,
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, bobAcct, coin.NewCoin(30, 0, "USD")),
	}
	_, err = f.deposit.Deliver(f.ctx, f.db, &notarytest.Tx{Msg: dep})
	require.NoError(t, err)
	assert.True(t, f.balance(t, bobAcct).Equals(amount))
	assert.True(t, f.balance(t, reserve).Equals(coin.NewCoin(0, 0, "USD")))
}

func TestVoucherRedeemsOnlyOnce(t *testing.T) {
	f := newFixture(t)

	// alice draws two vouchers of 30 each, the reserve backs both
	withdraw := func(claimed int64) Cheque {
		amount := coin.NewCoin(30, 0, "USD")
		msg := &WithdrawMsg{
			Account:       f.acct,
			VoucherAmount: &amount,
			Statement:     notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.acct, coin.NewCoin(claimed, 0, "USD")),
		}
		res, err := f.withdraw.Deliver(f.ctx, f.db, &notarytest.Tx{Msg: msg})
		require.NoError(t, err)
		var voucher Cheque
		require.NoError(t, json.Unmarshal(res.Data, &voucher))
		return voucher
	}
	first := withdraw(70)
	second := withdraw(40)
	require.NotEqual(t, first.Number, second.Number)

	reserve := account.ReserveAddress(account.ReserveVoucher, "USD")
	require.True(t, f.balance(t, reserve).Equals(coin.NewCoin(60, 0, "USD")))

	bobKey := crypto.GenPrivKeyEd25519()
	notarytest.RegisterNym(t, f.db, f.nyms, bobKey, 9)
	bobAcct := notarytest.NewAccount(t, f.db, f.accounts, bobKey.PublicKey().Condition(), "USD", 0)
	carolKey := crypto.GenPrivKeyEd25519()
	notarytest.RegisterNym(t, f.db, f.nyms, carolKey, 5)
	carolAcct := notarytest.NewAccount(t, f.db, f.accounts, carolKey.PublicKey().Condition(), "USD", 0)

	// bob redeems the first voucher
	f.auth.Signer = bobKey.PublicKey().Condition()
	dep := &DepositMsg{
		Account:   bobAcct,
		Cheque:    &first,
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, bobAcct, coin.NewCoin(30, 0, "USD")),
	}
	_, err := f.deposit.Deliver(f.ctx, f.db, &notarytest.Tx{Msg: dep})
	require.NoError(t, err)

	// carol presents a copy of the already redeemed voucher. Without the
	// redemption record this would drain the backing of the second one.
	f.auth.Signer = carolKey.PublicKey().Condition()
	replay := &DepositMsg{
		Account:   carolAcct,
		Cheque:    &first,
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, carolAcct, coin.NewCoin(30, 0, "USD")),
	}
	_, err = f.deposit.Check(f.ctx, f.db, &notarytest.Tx{Msg: replay})
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
	_, err = f.deposit.Deliver(f.ctx, f.db, &notarytest.Tx{Msg: replay})
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	assert.True(t, f.balance(t, carolAcct).Equals(coin.NewCoin(0, 0, "USD")))
	assert.True(t, f.balance(t, reserve).Equals(coin.NewCoin(30, 0, "USD")))

	// the second voucher stays redeemable
	dep2 := &DepositMsg{
		Account:   carolAcct,
		Cheque:    &second,
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, carolAcct, coin.NewCoin(30, 0, "USD")),
	}
	_, err = f.deposit.Deliver(f.ctx, f.db, &notarytest.Tx{Msg: dep2})
	require.NoError(t, err)
	assert.True(t, f.balance(t, carolAcct).Equals(coin.NewCoin(30, 0, "USD")))
	assert.True(t, f.balance(t, reserve).Equals(coin.NewCoin(0, 0, "USD")))
}

func TestWithdrawCashTokenWindowPolicy(t *testing.T) {
	f := newFixture(t)

	cases := map[string]struct {
		mutate  func(t *token.Token)
		wantErr *errors.Error
	}{
		"window already over": {
			mutate: func(tok *token.Token) {
				tok.ValidFrom = otx.AsUnixTime(testTime.Add(-48 * time.Hour))
				tok.ValidTo = otx.AsUnixTime(testTime.Add(-time.Hour))
			},
			wantErr: errors.ErrExpired,
		},
		"window outlives the mint": {
			mutate: func(tok *token.Token) {
				tok.ValidTo = otx.AsUnixTime(testTime.Add(10 * 365 * 24 * time.Hour))
			},
			wantErr: errors.ErrInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tok := unsignedToken(10)
			tc.mutate(&tok)
			msg := &WithdrawMsg{
				Account:   f.acct,
				Purse:     &token.Purse{Tokens: []token.Token{tok}},
				Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.acct, coin.NewCoin(90, 0, "USD")),
			}
			_, err := f.withdraw.Check(f.ctx, f.db, &notarytest.Tx{Msg: msg})
			assert.True(t, tc.wantErr.Is(err), "%+v", err)
			assert.True(t, f.balance(t, f.acct).Equals(coin.NewCoin(100, 0, "USD")))
		})
	}
}

func TestDepositCheque(t *testing.T) {
	f := newFixture(t)
	// bob writes a cheque against his account under his number 9
	bobKey := crypto.GenPrivKeyEd25519()
	bobNym := notarytest.RegisterNym(t, f.db, f.nyms, bobKey, 9)
	bobAcct := notarytest.NewAccount(t, f.db, f.accounts, bobKey.PublicKey().Condition(), "USD", 50)
	cheque := writeCheque(t, bobKey, bobAcct, 9, 20)

	msg := &DepositMsg{
		Account:   f.acct,
		Cheque:    cheque,
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.acct, coin.NewCoin(120, 0, "USD")),
	}
	tx := &notarytest.Tx{Msg: msg}
	_, err := f.deposit.Check(f.ctx, f.db, tx)
	require.NoError(t, err)
	_, err = f.deposit.Deliver(f.ctx, f.db, tx)
	require.NoError(t, err)

	assert.True(t, f.balance(t, f.acct).Equals(coin.NewCoin(120, 0, "USD")))
	assert.True(t, f.balance(t, bobAcct).Equals(coin.NewCoin(30, 0, "USD")))

	// the cheque's number is terminally consumed
	issued, err := f.nyms.IsIssued(f.db, bobNym, 9)
	require.NoError(t, err)
	assert.False(t, issued)

	// replaying the deposit fails on the consumed number
	_, err = f.deposit.Deliver(f.ctx, f.db, tx)
	assert.True(t, errors.ErrNumber.Is(err), "%+v", err)
}

func TestDepositOwnChequeCancelsIt(t *testing.T) {
	f := newFixture(t)
	cheque := writeCheque(t, f.aliceKey, f.acct, 2, 20)

	msg := &DepositMsg{
		Account:   f.acct,
		Cheque:    cheque,
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.acct, coin.NewCoin(100, 0, "USD")),
	}
	_, err := f.deposit.Deliver(f.ctx, f.db, &notarytest.Tx{Msg: msg})
	require.NoError(t, err)

	// no balance change, the number is just burned
	assert.True(t, f.balance(t, f.acct).Equals(coin.NewCoin(100, 0, "USD")))
	issued, err := f.nyms.IsIssued(f.db, f.alice, 2)
	require.NoError(t, err)
	assert.False(t, issued)
}

func TestDepositChequeRejections(t *testing.T) {
	f := newFixture(t)
	bobKey := crypto.GenPrivKeyEd25519()
	notarytest.RegisterNym(t, f.db, f.nyms, bobKey, 9)
	bobAcct := notarytest.NewAccount(t, f.db, f.accounts, bobKey.PublicKey().Condition(), "USD", 50)

	cases := map[string]struct {
		cheque  func(t *testing.T) *Cheque
		wantErr *errors.Error
	}{
		"tampered amount": {
			cheque: func(t *testing.T) *Cheque {
				c := writeCheque(t, bobKey, bobAcct, 9, 20)
				c.Amount = coin.NewCoin(40, 0, "USD")
				return c
			},
			wantErr: errors.ErrUnauthorized,
		},
		"number never issued": {
			cheque: func(t *testing.T) *Cheque {
				return writeCheque(t, bobKey, bobAcct, 77, 20)
			},
			wantErr: errors.ErrNumber,
		},
		"expired": {
			cheque: func(t *testing.T) *Cheque {
				c := &Cheque{
					Number: 9, Account: bobAcct,
					WriterNym: bobKey.PublicKey().Address(),
					Amount:    coin.NewCoin(20, 0, "USD"),
					ExpiresAt: otx.AsUnixTime(testTime.Add(-time.Minute)),
				}
				sig, err := bobKey.Sign(c.SigningBytes())
				require.NoError(t, err)
				c.Signature = sig
				return c
			},
			wantErr: errors.ErrExpired,
		},
		"drawn on a foreign account": {
			cheque: func(t *testing.T) *Cheque {
				other := notarytest.NewAccount(t, f.db, f.accounts, notarytest.NewCondition(), "USD", 50)
				return writeCheque(t, bobKey, other, 9, 20)
			},
			wantErr: errors.ErrUnauthorized,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			msg := &DepositMsg{
				Account:   f.acct,
				Cheque:    tc.cheque(t),
				Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.acct, coin.NewCoin(120, 0, "USD")),
			}
			_, err := f.deposit.Check(f.ctx, f.db, &notarytest.Tx{Msg: msg})
			assert.True(t, tc.wantErr.Is(err), "%+v", err)
			assert.True(t, f.balance(t, f.acct).Equals(coin.NewCoin(100, 0, "USD")))
		})
	}
}

func TestDepositCashPurse(t *testing.T) {
	f := newFixture(t)

	// mint two tokens from alice's account, then deposit them to bob
	withdrawMsg := &WithdrawMsg{
		Account:   f.acct,
		Purse:     &token.Purse{Tokens: []token.Token{unsignedToken(10), unsignedToken(15)}},
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.acct, coin.NewCoin(75, 0, "USD")),
	}
	res, err := f.withdraw.Deliver(f.ctx, f.db, &notarytest.Tx{Msg: withdrawMsg})
	require.NoError(t, err)
	var purse token.Purse
	require.NoError(t, json.Unmarshal(res.Data, &purse))

	bobKey := crypto.GenPrivKeyEd25519()
	notarytest.RegisterNym(t, f.db, f.nyms, bobKey, 9)
	bobAcct := notarytest.NewAccount(t, f.db, f.accounts, bobKey.PublicKey().Condition(), "USD", 0)
	f.auth.Signer = bobKey.PublicKey().Condition()

	depositMsg := &DepositMsg{
		Account:   bobAcct,
		Purse:     &purse,
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, bobAcct, coin.NewCoin(25, 0, "USD")),
	}
	tx := &notarytest.Tx{Msg: depositMsg}
	_, err = f.deposit.Deliver(f.ctx, f.db, tx)
	require.NoError(t, err)
	assert.True(t, f.balance(t, bobAcct).Equals(coin.NewCoin(25, 0, "USD")))

	// double spending the same purse is rejected with no credit
	_, err = f.deposit.Check(f.ctx, f.db, tx)
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
	_, err = f.deposit.Deliver(f.ctx, f.db, tx)
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
	assert.True(t, f.balance(t, bobAcct).Equals(coin.NewCoin(25, 0, "USD")))
}
