package lob

import "fmt"

// FileLocator is the subset of Locator operations a BFILE/CFILE supports:
// read-only, with an out-of-band directory alias/name pair (spec §4.6
// "FILE").
type FileLocator interface {
	Locator
	Open() error
	IsOpen() (bool, error)
	Close() error
	Exists() (bool, error)
	SetName(dirAlias, fileName string) error
	DirectoryAndName() (dirAlias, fileName string, err error)
}

// File wraps a BFILE/CFILE locator. Its directory alias and file name are
// retrieved lazily from the server on first access, per spec §4.6.
type File struct {
	*LOB
	floc           FileLocator
	dirAlias, name string
	nameLoaded     bool
}

// NewFile wraps floc as a File of the given Kind (BFILE or CFILE).
func NewFile(kind Kind, floc FileLocator) *File {
	if kind != KindBFILE && kind != KindCFILE {
		panic("lob: NewFile requires KindBFILE or KindCFILE")
	}
	return &File{LOB: New(kind, floc), floc: floc}
}

func (f *File) Open() error  { return f.floc.Open() }
func (f *File) Close() error { return f.floc.Close() }

func (f *File) IsOpen() (bool, error) { return f.floc.IsOpen() }
func (f *File) Exists() (bool, error) { return f.floc.Exists() }

// SetName sets the directory alias and file name, invalidating any cached
// lazily loaded values.
func (f *File) SetName(dirAlias, fileName string) error {
	if err := f.floc.SetName(dirAlias, fileName); err != nil {
		return err
	}
	f.dirAlias, f.name = dirAlias, fileName
	f.nameLoaded = true
	return nil
}

// Directory returns the file's directory alias, fetching it from the
// server on first access.
func (f *File) Directory() (string, error) {
	if err := f.ensureName(); err != nil {
		return "", err
	}
	return f.dirAlias, nil
}

// Name returns the file's name, fetching it from the server on first
// access.
func (f *File) Name() (string, error) {
	if err := f.ensureName(); err != nil {
		return "", err
	}
	return f.name, nil
}

func (f *File) ensureName() error {
	if f.nameLoaded {
		return nil
	}
	dir, name, err := f.floc.DirectoryAndName()
	if err != nil {
		return fmt.Errorf("lob: fetching file directory/name: %w", err)
	}
	f.dirAlias, f.name = dir, name
	f.nameLoaded = true
	return nil
}
