//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd
// +build !linux,!darwin,!freebsd,!netbsd,!openbsd

package models

import (
	"os"

	"github.com/pkg/errors"
)

func mmapFile(f *os.File, size int) ([]byte, error) {
	return nil, errors.New("mmap is not supported on this platform")
}

func munmap(p []byte) error {
	return nil
}
