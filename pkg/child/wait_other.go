//go:build !unix

package child

import (
	"errors"
	"fmt"
)

func wait(pid int) waitResult {
	return waitResult{status: Running(), err: fmt.Errorf("wait %d: %w", pid, errors.ErrUnsupported)}
}
