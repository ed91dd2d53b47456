package notary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/notarytest"
	"github.com/secureonelabs/opentxs-sub000/x/transfer"
)

func TestRequestRoundtrip(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	msg := &transfer.SendMsg{
		Source:      notarytest.NewCondition().Address(),
		Destination: notarytest.NewCondition().Address(),
		Amount:      coin.NewCoin(5, 0, "USD"),
	}
	req, err := NewRequest(key, key.PublicKey().Address(), 7, msg)
	require.NoError(t, err)
	raw, err := req.Marshal()
	require.NoError(t, err)

	decoded, err := StdCodec().DecodeRequest(raw)
	require.NoError(t, err)
	assert.Equal(t, req.Nym, decoded.Nym)
	assert.Equal(t, int64(7), decoded.MainNumber)

	got, err := decoded.GetMsg()
	require.NoError(t, err)
	sent, ok := got.(*transfer.SendMsg)
	require.True(t, ok)
	assert.Equal(t, msg.Source, sent.Source)
	assert.True(t, msg.Amount.Equals(sent.Amount))

	// decoding does not disturb the signed bytes
	assert.True(t, key.PublicKey().Verify(decoded.SigningBytes(), decoded.Signature))
}

func TestDecodeUnknownPath(t *testing.T) {
	_, err := StdCodec().Decode("no/such", []byte(`{}`))
	assert.True(t, errors.ErrMsg.Is(err))
}

func TestRouterRejectsUnknownPath(t *testing.T) {
	assert.Panics(t, func() {
		NewRouter().Handle(&badPathMsg{}, nil)
	})
}

type badPathMsg struct{ transfer.SendMsg }

func (badPathMsg) Path() string { return "UPPER case" }
