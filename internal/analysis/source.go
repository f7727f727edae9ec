package analysis

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Source supplies the byte stream for a user-chosen path.
type Source interface {
	Open(path string) (io.ReadCloser, error)
}

// FileSource reads from an afero filesystem; the zero value uses the OS filesystem.
type FileSource struct {
	Fs afero.Fs
}

// NewFileSource returns a FileSource over the OS filesystem.
func NewFileSource() FileSource { return FileSource{Fs: afero.NewOsFs()} }

func (s FileSource) Open(path string) (io.ReadCloser, error) {
	fs := s.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return f, nil
}
