//go:build !unix

package ttypair

import (
	"errors"
	"os"
)

func pollable(f *os.File) (*os.File, error) {
	return f, nil
}

func winsize(*os.File) (Size, error) {
	return Size{}, errors.ErrUnsupported
}
