/*
Protocol constants of the Nyzo chain, the sentinel's file layout and the preference keys. Runtime settings are
loaded in settings.go.
*/
package configuration

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/n-y-z-o/nyzoVerifier-sub001/pkg/identity"
	"github.com/pkg/errors"
)

const (
	Version = "sentinel-1"

	// 100 million coins, each divisible into 1 million micronyzo.
	NyzosInSystem                 = 100000000
	MicronyzoMultiplierRatio      = 1000000
	MicronyzosInSystem            = NyzosInSystem * MicronyzoMultiplierRatio
	MaximumCycleTransactionAmount = 100000 * MicronyzoMultiplierRatio
	// Charge an account maintenance fee every ... blocks
	BlocksBetweenFee = 500
	// Transactions must not create accounts with less than this.
	MinimumPreferredBalance = 10 * MicronyzoMultiplierRatio

	// Target block duration in milliseconds
	BlockDuration               = 7000
	MinimumVerificationInterval = 1500
	MinimumBlockchainVersion    = 0
	MaximumBlockchainVersion    = 2

	// v2 cycle transaction caps
	ApprovedCycleTransactionRetentionInterval = 10000

	// Data storage location and file names
	defaultDataDirectory     = "/var/lib/nyzo/production"
	PrivateKeyFileName       = "verifier_private_seed"
	VerifierInfoFileName     = "verifier_info"
	NicknameFileName         = "nickname"
	ManagedVerifiersFileName = "managed_verifiers"
	PreferencesFileName      = "preferences"
	LockedAccountsFileName   = "locked_accounts"
	SeedTransactionDirectory = "seed_transactions"
	SeedTransactionSource    = "https://seed.nyzo.co/seedTransactions"

	// Not sure what this account was used for, it has to be reproduced for balance list compatibility
	TransferAccountNyzoHex = "0000000000000000-0000000000000000-0000000000000000-0000000000000001"
	// Imaginary account (no known private key) for cycle funding
	CycleAccountNyzoHex = "0000000000000000-0000000000000000-0000000000000000-0000000000000002"
	SeedAccountNyzoHex  = "12d454a69523f739-eb5eb71c7deb8701-1804df336ae0e2c1-9e0b24a636683e31"
	// Seed transactions reference the genesis block
	GenesisBlockHashNyzoHex = "bc4cca2a2a50a229-256ae3f5b2b5cd49-aa1df1e2d0192726-c4bb41cdcea15364"

	ListeningPortTcp = 9444

	// Keys for user preferences
	DataDirectoryKey         = "data_dir"
	TraceKey                 = "trace"
	BootstrapStrategyKey     = "bootstrap_strategy"
	ApiEnabledKey            = "api_enabled"
	ApiListenAddressKey      = "api_listen_address"
	SeedTransactionSourceKey = "seed_transaction_source"
	SqlProtocolKey           = "sql_protocol"
	SqlHostKey               = "sql_host"
	SqlPortKey               = "sql_port"
	SqlDbNameKey             = "sql_db_name"
	SqlUserKey               = "sql_user"
	SqlPasswordKey           = "sql_password"
)

var DataDirectory = defaultDataDirectory
var LockedAccounts = map[string]struct{}{}
var TransferAccount []byte
var CycleAccount []byte
var SeedAccount []byte
var GenesisBlockHash []byte

// EnsureSetup creates the data directory and the sentinel's own identity, which signs its requests.
func EnsureSetup() (*identity.Identity, error) {
	err := os.MkdirAll(filepath.Join(DataDirectory, SeedTransactionDirectory), os.ModePerm)
	if err != nil {
		return nil, errors.Wrap(err, "could not create data directory")
	}
	keyFile := filepath.Join(DataDirectory, PrivateKeyFileName)
	var id *identity.Identity
	if _, err = os.Stat(keyFile); os.IsNotExist(err) {
		id, err = identity.New(keyFile, filepath.Join(DataDirectory, VerifierInfoFileName))
	} else {
		id, err = identity.FromPrivateKeyFile(keyFile)
	}
	if err != nil {
		return nil, err
	}
	id.LoadNicknameFromFile(filepath.Join(DataDirectory, NicknameFileName))
	LoadLockedAccounts(filepath.Join(DataDirectory, LockedAccountsFileName))
	return id, nil
}

// Returns true if id is in the locked accounts list
func IsLockedAccount(id []byte) bool {
	_, ok := LockedAccounts[identity.BytesToNyzoHex(id)]
	return ok
}

// LoadLockedAccounts reads one dashed hex account per line, '#' starts a comment. A missing file means no locks.
func LoadLockedAccounts(fileName string) int {
	LockedAccounts = make(map[string]struct{})
	f, err := os.Open(fileName)
	if err != nil {
		return 0
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.Split(scanner.Text(), "#")[0])
		if len(line) == 0 {
			continue
		}
		id, err := identity.NyzoHexToBytes([]byte(line), 32)
		if err == nil {
			LockedAccounts[identity.BytesToNyzoHex(id)] = struct{}{}
		}
	}
	return len(LockedAccounts)
}

func init() {
	TransferAccount, _ = identity.NyzoHexToBytes([]byte(TransferAccountNyzoHex), 32)
	CycleAccount, _ = identity.NyzoHexToBytes([]byte(CycleAccountNyzoHex), 32)
	SeedAccount, _ = identity.NyzoHexToBytes([]byte(SeedAccountNyzoHex), 32)
	GenesisBlockHash, _ = identity.NyzoHexToBytes([]byte(GenesisBlockHashNyzoHex), 32)
}
