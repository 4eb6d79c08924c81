package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifiersCommand(t *testing.T) {
	dataDirectory := t.TempDir()
	verifiers := "127.0.0.1:9444:f61ef799d1b1c171-977347a70bc6e89e-de9ce9be655ffc7a-965f810c936c3ad0:y # alpha\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDirectory, configuration.ManagedVerifiersFileName), []byte(verifiers), 0644))

	root := newRootCommand(viper.New())
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"verifiers", "--" + configuration.DataDirectoryKey, dataDirectory})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "127.0.0.1:9444")
	assert.Contains(t, out.String(), "alpha (sentinel transaction)")
}

func TestUnknownBootstrapStrategy(t *testing.T) {
	root := newRootCommand(viper.New())
	root.SetArgs([]string{"verifiers", "--" + configuration.DataDirectoryKey, t.TempDir(), "--" + configuration.BootstrapStrategyKey, "eager"})
	assert.Error(t, root.Execute())
}
