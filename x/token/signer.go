package token

import (
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// Signer is the external signing primitive. The engine sequences its
// calls and never looks inside.
type Signer interface {
	// SignToken signs the token in place.
	SignToken(t *Token) error
	// VerifyToken checks the mint signature on a presented token.
	VerifyToken(t *Token) error
}

// MintSigner is a plain ed25519 signer over the token's canonical bytes.
// It stands in for the blind signing primitive of a production mint.
type MintSigner struct {
	key *crypto.PrivateKey
}

var _ Signer = (*MintSigner)(nil)

func NewMintSigner(key *crypto.PrivateKey) *MintSigner {
	return &MintSigner{key: key}
}

func (m *MintSigner) SignToken(t *Token) error {
	sig, err := m.key.Sign(t.SigningBytes())
	if err != nil {
		return errors.Wrap(errors.ErrCollaborator, err.Error())
	}
	t.Signature = sig
	return nil
}

func (m *MintSigner) VerifyToken(t *Token) error {
	if len(t.Signature) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "unsigned token")
	}
	if !m.key.PublicKey().Verify(t.SigningBytes(), t.Signature) {
		return errors.Wrap(errors.ErrUnauthorized, "bad token signature")
	}
	return nil
}
