package notary

import (
	"encoding/json"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Request is the signed envelope around one message. The signature covers
// everything but itself, so the main number and the message body cannot be
// reused under another identity.
type Request struct {
	// Nym is the requesting identity.
	Nym otx.Address `json:"nym"`
	// MainNumber is the transaction number this notarization spends. Zero
	// only for mailbox processing of a fresh identity.
	MainNumber int64 `json:"main_number"`
	// Path routes to the message kind, Body is its serialization.
	Path string          `json:"path"`
	Body json.RawMessage `json:"body"`
	// Signature of the identity over the signing bytes.
	Signature crypto.Signature `json:"signature"`

	// msg is the decoded body, set by the codec.
	msg otx.Msg
}

var _ otx.Tx = (*Request)(nil)

func (r *Request) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func (r *Request) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, r)
}

func (r *Request) Validate() error {
	var err error
	if verr := r.Nym.Validate(); verr != nil {
		err = errors.AppendField(err, "Nym", verr)
	}
	if r.MainNumber < 0 {
		err = errors.AppendField(err, "MainNumber", errors.ErrNumber)
	}
	if r.Path == "" {
		err = errors.AppendField(err, "Path", errors.ErrEmpty)
	}
	if len(r.Body) == 0 {
		err = errors.AppendField(err, "Body", errors.ErrEmpty)
	}
	if len(r.Signature) == 0 {
		err = errors.AppendField(err, "Signature", errors.ErrEmpty)
	}
	return err
}

// GetMsg returns the decoded message. The codec must have decoded the
// request first.
func (r *Request) GetMsg() (otx.Msg, error) {
	if r.msg == nil {
		return nil, errors.Wrap(errors.ErrState, "request body not decoded")
	}
	return r.msg, nil
}

// SigningBytes is the canonical serialization the identity signs, the
// request with the signature blanked.
func (r *Request) SigningBytes() []byte {
	unsigned := *r
	unsigned.Signature = nil
	raw, err := json.Marshal(&unsigned)
	if err != nil {
		panic(err)
	}
	return raw
}

// DecodeRequest parses a raw envelope and its body.
func (c *Codec) DecodeRequest(raw []byte) (*Request, error) {
	var req Request
	if err := req.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "cannot decode request: %s", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	msg, err := c.Decode(req.Path, req.Body)
	if err != nil {
		return nil, err
	}
	req.msg = msg
	return &req, nil
}

// NewRequest builds and signs an envelope around the given message.
func NewRequest(signer crypto.Signer, nym otx.Address, mainNumber int64, msg otx.Msg) (*Request, error) {
	body, err := msg.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal message")
	}
	req := &Request{
		Nym:        nym,
		MainNumber: mainNumber,
		Path:       msg.Path(),
		Body:       body,
		msg:        msg,
	}
	sig, err := signer.Sign(req.SigningBytes())
	if err != nil {
		return nil, errors.Wrap(err, "cannot sign request")
	}
	req.Signature = sig
	return req, nil
}
