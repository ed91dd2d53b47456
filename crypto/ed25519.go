package crypto

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/ed25519"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/errors"
)

// ExtensionName is used for the conditions we derive from signatures.
const ExtensionName = "sigs"

// Signature is a raw ed25519 signature.
type Signature []byte

// PublicKey holds raw ed25519 public key material.
type PublicKey []byte

// Signer is the functionality we use from a private key. No serializing, to
// support hardware devices as well.
type Signer interface {
	Sign(message []byte) (Signature, error)
	PublicKey() PublicKey
}

// Verify verifies the signature was created with this message and public
// key.
func (p PublicKey) Verify(message []byte, sig Signature) bool {
	if len(p) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, sig)
}

// Condition encodes the public key into an authorization condition.
func (p PublicKey) Condition() otx.Condition {
	return otx.NewCondition(ExtensionName, "ed25519", p)
}

// Address is a shortcut for Condition().Address().
func (p PublicKey) Address() otx.Address {
	return p.Condition().Address()
}

// Validate returns an error on wrong key material size.
func (p PublicKey) Validate() error {
	if len(p) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "public key size: %d", len(p))
	}
	return nil
}

func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(p))
}

func (p *PublicKey) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return err
	}
	val, err := hex.DecodeString(enc)
	if err != nil {
		return err
	}
	*p = val
	return nil
}

// PrivateKey wraps ed25519 private key material and implements Signer.
type PrivateKey struct {
	priv ed25519.PrivateKey
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key.
func (p *PrivateKey) Sign(message []byte) (Signature, error) {
	if len(p.priv) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrState, "uninitialized private key")
	}
	return ed25519.Sign(p.priv, message), nil
}

// PublicKey returns the corresponding PublicKey.
func (p *PrivateKey) PublicKey() PublicKey {
	return PublicKey(p.priv.Public().(ed25519.PublicKey))
}

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{priv: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness, or
// for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{priv: ed25519.NewKeyFromSeed(seed)}
}
