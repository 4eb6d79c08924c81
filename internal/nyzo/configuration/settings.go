package configuration

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	BootstrapStrategyFast     = "fast"
	BootstrapStrategyThorough = "thorough"
)

// Settings are the runtime options of a sentinel process.
type Settings struct {
	DataDirectory         string
	Trace                 bool
	BootstrapStrategy     string
	ApiEnabled            bool
	ApiListenAddress      string
	SeedTransactionSource string
	Sql                   SqlSettings
}

type SqlSettings struct {
	Protocol string
	Host     string
	Port     string
	DbName   string
	User     string
	Password string
}

// Enabled reports whether a database host was configured.
func (s SqlSettings) Enabled() bool {
	return len(s.Host) > 0
}

// SetDefaults registers the default value of every preference on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(DataDirectoryKey, defaultDataDirectory)
	v.SetDefault(TraceKey, false)
	v.SetDefault(BootstrapStrategyKey, BootstrapStrategyFast)
	v.SetDefault(ApiEnabledKey, false)
	v.SetDefault(ApiListenAddressKey, ":8000")
	v.SetDefault(SeedTransactionSourceKey, SeedTransactionSource)
	v.SetDefault(SqlProtocolKey, "tcp")
	v.SetDefault(SqlPortKey, "3306")
}

// LoadSettings reads the preferences file (key=value lines) from the data directory, with NYZO_ environment
// variables and any values already set on v (flags) taking precedence.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)
	v.SetEnvPrefix("nyzo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	dataDirectory := v.GetString(DataDirectoryKey)
	v.SetConfigFile(filepath.Join(dataDirectory, PreferencesFileName))
	v.SetConfigType("properties")
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, errors.Wrap(err, "could not read preferences")
	}
	s := &Settings{
		DataDirectory:         dataDirectory,
		Trace:                 v.GetBool(TraceKey),
		BootstrapStrategy:     strings.ToLower(v.GetString(BootstrapStrategyKey)),
		ApiEnabled:            v.GetBool(ApiEnabledKey),
		ApiListenAddress:      v.GetString(ApiListenAddressKey),
		SeedTransactionSource: v.GetString(SeedTransactionSourceKey),
		Sql: SqlSettings{
			Protocol: v.GetString(SqlProtocolKey),
			Host:     v.GetString(SqlHostKey),
			Port:     v.GetString(SqlPortKey),
			DbName:   v.GetString(SqlDbNameKey),
			User:     v.GetString(SqlUserKey),
			Password: v.GetString(SqlPasswordKey),
		},
	}
	if s.BootstrapStrategy != BootstrapStrategyFast && s.BootstrapStrategy != BootstrapStrategyThorough {
		return nil, errors.Errorf("unknown bootstrap strategy %q", s.BootstrapStrategy)
	}
	return s, nil
}

func isNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}
