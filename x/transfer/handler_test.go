package transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/notarytest"
	"github.com/secureonelabs/opentxs-sub000/store"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/nym"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
)

type fixture struct {
	ctx      otx.Context
	db       otx.CacheableKVStore
	auth     *notarytest.Auth
	accounts account.Controller
	ledgers  ledger.Controller
	handler  *sendHandler

	alice otx.Condition
	src   otx.Address
	dest  otx.Address
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		db:       store.MemStore(),
		accounts: account.NewController(),
		ledgers:  ledger.NewController(),
		alice:    notarytest.NewCondition(),
	}
	f.auth = &notarytest.Auth{Signer: f.alice}
	f.handler = &sendHandler{
		auth:     f.auth,
		accounts: f.accounts,
		ledgers:  f.ledgers,
		verifier: statement.NewVerifier(f.accounts, f.ledgers, nym.NewController()),
	}
	f.src = notarytest.NewAccount(t, f.db, f.accounts, f.alice, "USD", 100)
	f.dest = notarytest.NewAccount(t, f.db, f.accounts, notarytest.NewCondition(), "USD", 0)
	f.ctx = otx.WithMainNumber(context.Background(), 7)
	return f
}

func (f *fixture) sendMsg(t testing.TB, amount int64) *SendMsg {
	t.Helper()
	return &SendMsg{
		Source:      f.src,
		Destination: f.dest,
		Amount:      coin.NewCoin(amount, 0, "USD"),
		Statement: notarytest.BalanceStatementFor(t, f.db, f.ledgers, f.src,
			coin.NewCoin(100-amount, 0, "USD")),
	}
}

func (f *fixture) balance(t testing.TB, id otx.Address) coin.Coin {
	t.Helper()
	c, err := f.accounts.Balance(f.db, id)
	require.NoError(t, err)
	return c
}

func TestSendTransfer(t *testing.T) {
	f := newFixture(t)
	tx := &notarytest.Tx{Msg: f.sendMsg(t, 40)}

	_, err := f.handler.Check(f.ctx, f.db, tx)
	require.NoError(t, err)

	_, err = f.handler.Deliver(f.ctx, f.db, tx)
	require.NoError(t, err)

	// the amount sits in escrow, not yet with the recipient
	assert.True(t, f.balance(t, f.src).Equals(coin.NewCoin(60, 0, "USD")))
	assert.True(t, f.balance(t, f.dest).Equals(coin.NewCoin(0, 0, "USD")))
	escrow := account.ReserveAddress(account.ReserveTransfer, "USD")
	assert.True(t, f.balance(t, escrow).Equals(coin.NewCoin(40, 0, "USD")))

	inbox, err := f.ledgers.Ledger(f.db, ledger.Inbox, f.dest)
	require.NoError(t, err)
	require.Len(t, inbox.Entries, 1)
	assert.Equal(t, ledger.PendingTransfer, inbox.Entries[0].Kind)
	assert.Equal(t, int64(7), inbox.Entries[0].Number)
	assert.True(t, inbox.Entries[0].Amount.Equals(coin.NewCoin(40, 0, "USD")))

	outbox, err := f.ledgers.Ledger(f.db, ledger.Outbox, f.src)
	require.NoError(t, err)
	require.Len(t, outbox.Entries, 1)
	assert.Equal(t, ledger.TransferSent, outbox.Entries[0].Kind)
	assert.Equal(t, int64(7), outbox.Entries[0].Number)
}

func TestSendRejections(t *testing.T) {
	cases := map[string]struct {
		corrupt func(*testing.T, *fixture, *SendMsg)
		wantErr *errors.Error
	}{
		"wrong signer": {
			corrupt: func(t *testing.T, f *fixture, msg *SendMsg) {
				f.auth.Signer = notarytest.NewCondition()
			},
			wantErr: errors.ErrUnauthorized,
		},
		"insufficient funds": {
			corrupt: func(t *testing.T, f *fixture, msg *SendMsg) {
				msg.Amount = coin.NewCoin(101, 0, "USD")
				msg.Statement.NewBalance = coin.NewCoin(-1, 0, "USD")
			},
			wantErr: errors.ErrInsufficientFunds,
		},
		"statement off by one": {
			corrupt: func(t *testing.T, f *fixture, msg *SendMsg) {
				msg.Statement.NewBalance = coin.NewCoin(61, 0, "USD")
			},
			wantErr: errors.ErrStatement,
		},
		"stale outbox hash": {
			corrupt: func(t *testing.T, f *fixture, msg *SendMsg) {
				msg.Statement.OutboxHash = []byte("stale")
			},
			wantErr: errors.ErrStatement,
		},
		"internal destination": {
			corrupt: func(t *testing.T, f *fixture, msg *SendMsg) {
				reserve, err := f.accounts.EnsureReserve(f.db, account.ReserveMint, "USD")
				require.NoError(t, err)
				msg.Destination = reserve
			},
			wantErr: errors.ErrUnauthorized,
		},
		"instrument mismatch": {
			corrupt: func(t *testing.T, f *fixture, msg *SendMsg) {
				msg.Destination = notarytest.NewAccount(t, f.db, f.accounts, notarytest.NewCondition(), "EUR", 0)
			},
			wantErr: errors.ErrType,
		},
		"unknown destination": {
			corrupt: func(t *testing.T, f *fixture, msg *SendMsg) {
				msg.Destination = notarytest.NewCondition().Address()
			},
			wantErr: errors.ErrNotFound,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			msg := f.sendMsg(t, 40)
			tc.corrupt(t, f, msg)
			tx := &notarytest.Tx{Msg: msg}

			_, err := f.handler.Check(f.ctx, f.db, tx)
			assert.True(t, tc.wantErr.Is(err), "check: %+v", err)
			_, err = f.handler.Deliver(f.ctx, f.db, tx)
			assert.True(t, tc.wantErr.Is(err), "deliver: %+v", err)

			// rejection must not move funds
			assert.True(t, f.balance(t, f.src).Equals(coin.NewCoin(100, 0, "USD")))
		})
	}
}

func TestSendAtomicity(t *testing.T) {
	f := newFixture(t)
	msg := f.sendMsg(t, 40)

	// poison the second leg: the destination inbox already has an entry
	// with the main number, so the inbox append fails after the debit
	require.NoError(t, f.ledgers.Append(f.db, ledger.Inbox, f.dest, ledger.Entry{
		Kind: ledger.Notice, Number: 7,
	}))

	cache := f.db.CacheWrap()
	_, err := f.handler.Deliver(f.ctx, cache, &notarytest.Tx{Msg: msg})
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
	cache.Discard()

	// the savepoint discard leaves the first leg untouched
	assert.True(t, f.balance(t, f.src).Equals(coin.NewCoin(100, 0, "USD")))
	escrow := account.ReserveAddress(account.ReserveTransfer, "USD")
	_, err = f.accounts.Balance(f.db, escrow)
	assert.True(t, errors.ErrNotFound.Is(err))
}
