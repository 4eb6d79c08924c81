package utilities

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteArrays(t *testing.T) {
	list := [][]byte{{1, 2}, {3}, {0xff}}
	require.Equal(t, 1, ByteArrayIndex(list, []byte{3}))
	require.False(t, ByteArrayContains(list, []byte{4}))
	require.True(t, ByteArrayComparator([]byte{0x01}, []byte{0xff}))
	require.False(t, ByteArrayComparator([]byte{0xff}, []byte{0x01}))
}

func TestDownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("seed"))
	}))
	defer server.Close()
	destination := filepath.Join(t.TempDir(), "file")

	require.Error(t, DownloadFile(context.Background(), server.URL+"/missing", destination))
	require.True(t, FileDoesNotExists(destination))

	require.NoError(t, DownloadFile(context.Background(), server.URL+"/ok", destination))
	content, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "seed", string(content))
}
