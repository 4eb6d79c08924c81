/*
Shadowed verifiers: the identities the sentinel holds seeds for and produces blocks on behalf of.
*/
package networking

import (
	"bufio"
	"bytes"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/pkg/errors"
)

// ErrNoManagedVerifiers means the configuration file held no usable entry.
var ErrNoManagedVerifiers = errors.New("no managed verifiers found")

type ManagedVerifier struct {
	Host                       string
	Port                       int32
	Identity                   *identity.Identity
	SentinelTransactionEnabled bool // add a marker transaction to blocks produced for this verifier
}

// Address is the TCP dial address of the verifier.
func (v *ManagedVerifier) Address() string {
	return net.JoinHostPort(v.Host, strconv.Itoa(int(v.Port)))
}

// ManagedVerifierFromString parses "host:port:seed[:y] # nickname", e.g.
// "206.189.23.229:9444:f61ef799d1b1c171-977347a70bc6e89e-de9ce9be655ffc7a-965f810c936c3ad0:y # alpha".
// The seed may also be given as a key_ Nyzo string.
func ManagedVerifierFromString(line string) (*ManagedVerifier, error) {
	data, nick, _ := strings.Cut(line, "#")
	fields := strings.Split(strings.TrimSpace(data), ":")
	if len(fields) < 3 || len(fields[0]) == 0 {
		return nil, errors.Errorf("expected host:port:seed, got %q", strings.TrimSpace(data))
	}
	port, err := strconv.Atoi(fields[1])
	if err != nil || port <= 0 || port > 65535 {
		return nil, errors.Errorf("invalid port %q", fields[1])
	}
	var id *identity.Identity
	if strings.HasPrefix(fields[2], identity.NyzoStringPrivateKeyPrefix) {
		var seed []byte
		_, seed, err = identity.FromNyzoString(fields[2])
		if err == nil {
			id, err = identity.FromPrivateKey(seed)
		}
	} else {
		id, err = identity.FromNyzoHex(fields[2])
	}
	if err != nil {
		return nil, errors.Wrap(err, "invalid seed")
	}
	if nick = strings.TrimSpace(nick); len(nick) > 0 {
		id.Nickname = nick
	}
	transactionEnabled := len(fields) > 3 && strings.EqualFold(strings.TrimSpace(fields[3]), "y")
	return &ManagedVerifier{Host: fields[0], Port: int32(port), Identity: id, SentinelTransactionEnabled: transactionEnabled}, nil
}

// LoadManagedVerifiers reads one verifier per line, skipping blank lines, comments, malformed lines and
// duplicate identities.
func LoadManagedVerifiers(fileName string) ([]*ManagedVerifier, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load managed verifiers")
	}
	defer f.Close()
	var verifiers []*ManagedVerifier
	scanner := bufio.NewScanner(f)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		verifier, err := ManagedVerifierFromString(line)
		if err != nil {
			logging.WarningLog.Printf("Skipping managed verifier on line %d: %s.", lineNumber, err.Error())
			continue
		}
		if containsIdentity(verifiers, verifier.Identity.PublicKey) {
			logging.WarningLog.Printf("Skipping duplicate managed verifier %s on line %d.", verifier.Identity.ShortId, lineNumber)
			continue
		}
		verifiers = append(verifiers, verifier)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot load managed verifiers")
	}
	if len(verifiers) == 0 {
		return nil, ErrNoManagedVerifiers
	}
	for _, verifier := range verifiers {
		logging.InfoLog.Printf("Got managed verifier: %s, nick: %s.", verifier.Identity.ShortId, verifier.Identity.Nickname)
	}
	return verifiers, nil
}

func containsIdentity(verifiers []*ManagedVerifier, id []byte) bool {
	for _, verifier := range verifiers {
		if bytes.Equal(verifier.Identity.PublicKey, id) {
			return true
		}
	}
	return false
}
