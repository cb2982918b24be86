package manifest

import (
	"io/fs"
	"os"
)

// FS is the narrow filesystem surface the builder scans through. The
// indirection keeps the join logic testable against in-memory fixtures.
type FS interface {
	ReadDir(name string) ([]os.DirEntry, error)
	Stat(name string) (fs.FileInfo, error)
}

type osFS struct{}

func (osFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

func (osFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
