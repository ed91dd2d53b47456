package crypto

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSignAndVerify(t *testing.T) {
	priv := GenPrivKeyEd25519()
	pub := priv.PublicKey()
	if err := pub.Validate(); err != nil {
		t.Fatalf("invalid public key: %+v", err)
	}

	msg := []byte("some message to settle")
	sig, err := priv.Sign(msg)
	if err != nil {
		t.Fatalf("cannot sign: %+v", err)
	}
	if !pub.Verify(msg, sig) {
		t.Fatal("signature did not verify")
	}
	if pub.Verify([]byte("another message"), sig) {
		t.Fatal("signature verified a different message")
	}

	other := GenPrivKeyEd25519().PublicKey()
	if other.Verify(msg, sig) {
		t.Fatal("signature verified with a different key")
	}
}

func TestVerifyBadSizes(t *testing.T) {
	priv := GenPrivKeyEd25519()
	msg := []byte("msg")
	sig, err := priv.Sign(msg)
	if err != nil {
		t.Fatalf("cannot sign: %+v", err)
	}
	var empty PublicKey
	if empty.Verify(msg, sig) {
		t.Fatal("empty key must not verify")
	}
	if priv.PublicKey().Verify(msg, sig[:10]) {
		t.Fatal("truncated signature must not verify")
	}
}

func TestDeterministicFromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivKeyEd25519FromSeed(seed)
	b := PrivKeyEd25519FromSeed(seed)
	if !bytes.Equal(a.PublicKey(), b.PublicKey()) {
		t.Fatal("same seed must produce the same key")
	}

	msg := []byte("payload")
	sigA, err := a.Sign(msg)
	if err != nil {
		t.Fatalf("cannot sign: %+v", err)
	}
	if !b.PublicKey().Verify(msg, sigA) {
		t.Fatal("cross verification failed")
	}
}

func TestCondition(t *testing.T) {
	priv := PrivKeyEd25519FromSeed(bytes.Repeat([]byte{1}, 32))
	cond := priv.PublicKey().Condition()
	if err := cond.Validate(); err != nil {
		t.Fatalf("invalid condition: %+v", err)
	}
	addr := priv.PublicKey().Address()
	if err := addr.Validate(); err != nil {
		t.Fatalf("invalid address: %+v", err)
	}
	if !cond.Address().Equals(addr) {
		t.Fatal("address must match condition address")
	}
}

func TestPublicKeyJSON(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	raw, err := json.Marshal(pub)
	if err != nil {
		t.Fatalf("cannot marshal: %+v", err)
	}
	var got PublicKey
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("cannot unmarshal: %+v", err)
	}
	if !bytes.Equal(pub, got) {
		t.Fatal("roundtrip mismatch")
	}
}
