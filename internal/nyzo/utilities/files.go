/*
Simple file utilities.
*/
package utilities

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

// Download a file via http(s) and store it locally. A partial download is removed.
func DownloadFile(ctx context.Context, source, destination string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(request)
	if err != nil {
		return errors.Wrapf(err, "cannot get %s", source)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("cannot get %s, status: %d", source, resp.StatusCode)
	}
	out, err := os.Create(destination)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(destination)
	}
	return err
}

// FileDoesNotExists returns 'true' if we can safely assume that the given file does not exist.
func FileDoesNotExists(file string) bool {
	_, err := os.Stat(file)
	return os.IsNotExist(err)
}
