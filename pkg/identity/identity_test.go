package identity

import (
	"path/filepath"
	"testing"
)

const (
	testSeedHex   = "f61ef799d1b1c171-977347a70bc6e89e-de9ce9be655ffc7a-965f810c936c3ad0"
	testPublicHex = "ec25e1a9aa7819bf-7748eeeebcae05a1-7739ab9905865351-fa2b971abb660047"
)

// Implicitly also tests identity format conversions.
func TestFromNyzoHex(t *testing.T) {
	identity, err := FromNyzoHex(testSeedHex)
	if err != nil {
		t.Fatal("Error reading private seed: " + err.Error())
	}
	if identity.PublicHex != testPublicHex {
		t.Errorf("Public Key Hex format incorrect, got: %s, want: %s.", identity.PublicHex, testPublicHex)
	}
	if identity.PrivateHex != testSeedHex {
		t.Errorf("Private Key Hex format incorrect, got: %s, want: %s.", identity.PrivateHex, testSeedHex)
	}
	want := "key_8fpv.XEhJt5PCVd7GNM6Y9ZvEeD~qm_-vGqwxgQjs3IghxxMfuRm"
	if identity.NyzoStringPrivate != want {
		t.Errorf("Private Key Nyzo String format incorrect, got: %s, want: %s.", identity.NyzoStringPrivate, want)
	}
	want = "id__8eNCWrDHv1D_uSALZIQL1r5VerLq1pqjkwFICPHZqx17rKd-_1Gt"
	if identity.NyzoStringPublic != want {
		t.Errorf("Public Key Nyzo String format incorrect, got: %s, want: %s.", identity.NyzoStringPublic, want)
	}
	if identity.ShortId != "ec25...0047" {
		t.Errorf("Unexpected short id: %s.", identity.ShortId)
	}
}

func TestNyzoStringRoundTrip(t *testing.T) {
	identity, _ := FromNyzoHex(testSeedHex)
	stringType, content, err := FromNyzoString(identity.NyzoStringPublic)
	if err != nil || stringType != NyzoStringTypePublicKey || BytesToNyzoHex(content) != testPublicHex {
		t.Errorf("Could not decode public Nyzo string: %v.", err)
	}
	corrupted := identity.NyzoStringPublic[:len(identity.NyzoStringPublic)-1] + "x"
	if _, _, err := FromNyzoString(corrupted); err == nil {
		t.Error("Corrupted Nyzo string should not decode.")
	}
}

func TestNewIdentityFile(t *testing.T) {
	directory := t.TempDir()
	file := filepath.Join(directory, "private_seed")
	newIdentity, err := New(file, filepath.Join(directory, "info"))
	if err != nil {
		t.Fatal("Error generating new identity: " + err.Error())
	}
	reloaded, err := FromPrivateKeyFile(file)
	if err != nil {
		t.Fatal("Could not reload newly generated identity: " + err.Error())
	}
	if newIdentity.NyzoStringPrivate != reloaded.NyzoStringPrivate {
		t.Error("Newly generated identity and reloaded version of it don't match.")
	}
	reloaded.LoadNicknameFromFile(filepath.Join(directory, "missing"))
	if reloaded.Nickname != reloaded.ShortId {
		t.Error("Nickname should fall back to the short id.")
	}
}

func TestShortSeedRejected(t *testing.T) {
	if _, err := FromPrivateKey([]byte{1, 2, 3}); err == nil {
		t.Error("A short seed should be rejected.")
	}
	if _, err := FromNyzoHex("abcd"); err == nil {
		t.Error("A short hex seed should be rejected.")
	}
}
