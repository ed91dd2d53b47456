package notary

import (
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/coin"
	"github.com/secureonelabs/opentxs-sub000/crypto"
)

// Response is the signed reply to a single Request. The client keeps it as
// a receipt: the request is echoed back verbatim so the reply cannot be
// attached to a different notarization, and the account snapshot lets the
// client reconcile its books without a separate query.
type Response struct {
	// Success is true when the notarization was delivered, false when it
	// was rejected or delivery failed.
	Success bool `json:"success"`
	// Reason carries the failure description. Empty on success.
	Reason string `json:"reason,omitempty"`
	// Request is the envelope as received, signature included.
	Request Request `json:"request"`
	// Account is a snapshot of the request's primary account right after
	// processing. Nil when the request names no account.
	Account *AccountSnapshot `json:"account,omitempty"`
	// Data carries handler specific payload, like a freshly signed cheque
	// or the signed tokens of a withdrawal.
	Data []byte `json:"data,omitempty"`
	// Signature is the notary's signature over the response.
	Signature crypto.Signature `json:"signature,omitempty"`
}

// AccountSnapshot captures the state a client must countersign against.
type AccountSnapshot struct {
	ID         otx.Address `json:"id"`
	Balance    coin.Coin   `json:"balance"`
	InboxHash  []byte      `json:"inbox_hash"`
	OutboxHash []byte      `json:"outbox_hash"`
}

// SigningBytes returns the canonical serialization signed by the notary.
func (r Response) SigningBytes() ([]byte, error) {
	r.Signature = nil
	return json.Marshal(r)
}

// VerifyResponse checks the notary signature on a response. Clients call
// this before trusting a receipt.
func VerifyResponse(r Response, pub crypto.PublicKey) bool {
	bz, err := r.SigningBytes()
	if err != nil {
		return false
	}
	return pub.Verify(bz, r.Signature)
}
