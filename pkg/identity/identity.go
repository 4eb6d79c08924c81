/*
A Nyzo identity, represented by a private and public key pair.
Offering some convenience conversions to Nyzo hex key notations and Nyzo strings.
A nickname can be added optionally.
*/
package identity

import (
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkg/errors"
)

type Identity struct {
	PrivateKey        ed25519.PrivateKey // the private key (native format)
	PublicKey         ed25519.PublicKey  // the public key (native format)
	PrivateHex        string             // hexadecimal dashed representation of the private key
	PublicHex         string             // hexadecimal dashed representation of the public key
	ShortId           string             // a short identifier based on the public key hex (ab03...de78)
	Nickname          string             // the user defined Nyzo nickname, used for display only
	NyzoStringPrivate string             // typed, error-protected encoding of the private key
	NyzoStringPublic  string             // typed, error-protected encoding of the public key
}

// Creates a new identity and writes its private seed to privateKeyFile, plus the Nyzo string versions to infoFile.
// Existing files will be overwritten.
func New(privateKeyFile string, infoFile string) (*Identity, error) {
	public, private, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate new Nyzo identity")
	}
	id := &Identity{PrivateKey: private, PublicKey: public}
	id.addConvenienceDerivatives()
	err = os.WriteFile(privateKeyFile, []byte(id.PrivateHex+"\n"), 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "error writing new Nyzo identity to file %s", privateKeyFile)
	}
	err = os.WriteFile(infoFile, []byte(id.NyzoStringPrivate+"\n"+id.NyzoStringPublic+"\n"), 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "error writing new Nyzo identity info to file %s", infoFile)
	}
	return id, nil
}

// Load an identity from a private key file.
func FromPrivateKeyFile(privateKeyFile string) (*Identity, error) {
	data, err := os.ReadFile(privateKeyFile)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read private key data from %s", privateKeyFile)
	}
	id, err := FromNyzoHex(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "could not convert private key data in %s", privateKeyFile)
	}
	return id, nil
}

// FromNyzoHex builds an identity from a (possibly dashed) hex private seed.
func FromNyzoHex(seed string) (*Identity, error) {
	key, err := NyzoHexToBytes([]byte(seed), ed25519.SeedSize)
	if err != nil {
		return nil, err
	}
	return FromPrivateKey(key)
}

// Generate an ID from a private seed directly.
func FromPrivateKey(privateKey []byte) (*Identity, error) {
	if len(privateKey) != ed25519.SeedSize {
		return nil, errors.Errorf("private seed must be %d bytes, got %d", ed25519.SeedSize, len(privateKey))
	}
	id := &Identity{}
	id.PrivateKey = ed25519.NewKeyFromSeed(privateKey)
	id.PublicKey = make([]byte, ed25519.PublicKeySize)
	copy(id.PublicKey, id.PrivateKey[32:])
	id.addConvenienceDerivatives()
	return id, nil
}

// Loads the user-defined nickname from the given file (if not possible, the ShortId is taken as a nick).
func (id *Identity) LoadNicknameFromFile(file string) {
	data, err := os.ReadFile(file)
	nickname := ""
	if err == nil {
		nickname = strings.TrimSpace(string(data))
	}
	if len(nickname) > 0 {
		id.Nickname = nickname
	} else {
		id.Nickname = id.ShortId
	}
}

// Sign the given data with this identity, returns the signature.
func (id *Identity) Sign(data []byte) []byte {
	return ed25519.Sign(id.PrivateKey, data)
}

// Helper to add convenience derivatives like the Nyzo hex formats or the Nyzo strings to the given identity.
func (id *Identity) addConvenienceDerivatives() {
	id.PrivateHex = BytesToNyzoHex(id.PrivateKey.Seed())
	id.PublicHex = BytesToNyzoHex(id.PublicKey)
	id.NyzoStringPrivate = ToNyzoString(NyzoStringTypePrivateKey, id.PrivateKey.Seed())
	id.NyzoStringPublic = ToNyzoString(NyzoStringTypePublicKey, id.PublicKey)
	id.ShortId = hex.EncodeToString(id.PublicKey[:2]) + "..." + hex.EncodeToString(id.PublicKey[len(id.PublicKey)-2:])
	id.Nickname = id.ShortId
}
