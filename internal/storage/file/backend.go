package file

import (
	"io"
	"os"

	"github.com/dsnet/golib/memfile"
)

// backend is the byte store behind a FileManager.
type backend interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
	Sync() error
	Close() error
}

type diskBackend struct {
	*os.File
}

func openDisk(path string) (diskBackend, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return diskBackend{}, err
	}
	return diskBackend{File: f}, nil
}

func (d diskBackend) Size() (int64, error) {
	fi, err := d.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

type memBackend struct {
	*memfile.File
}

func newMem() memBackend {
	return memBackend{File: memfile.New(make([]byte, 0))}
}

func (m memBackend) Size() (int64, error) { return int64(len(m.Bytes())), nil }

func (memBackend) Sync() error { return nil }

func (memBackend) Close() error { return nil }
