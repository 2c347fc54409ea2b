//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/blueprint/internal/errors"
)

// openNoFollow opens path normally; O_NOFOLLOW has no Windows equivalent and
// ValidatePath has already rejected a symlinked final component.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, err
	}
	return f, nil
}
