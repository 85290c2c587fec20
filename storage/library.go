package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jsphweid/fingerbot/constants"
	"github.com/jsphweid/fingerbot/model"
	"github.com/jsphweid/fingerbot/util"
	"github.com/spf13/afero"
)

var log = logging.Logger("storage")

// Library is the flat directory of user files. Listings are cached until
// something changes the directory.
type Library struct {
	fs   afero.Fs
	root string

	mu     sync.Mutex
	cached []model.StoredFile
	valid  bool
}

func NewLibrary(fs afero.Fs, root string) (*Library, error) {
	if err := fs.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", model.ErrIO, root, err)
	}
	return &Library{fs: fs, root: root}, nil
}

func (l *Library) Fs() afero.Fs {
	return l.fs
}

func (l *Library) Root() string {
	return l.root
}

// SanitizeName replaces whitespace and rejects names that are not a single
// path element inside the root.
func SanitizeName(raw string) (string, error) {
	name := util.ReplaceWhitespace(raw)
	if err := CheckName(name); err != nil {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidFilename, raw)
	}
	return name, nil
}

// CheckName rejects anything that is not a single path element inside the
// root.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", model.ErrInvalidFilename, name)
	}
	return nil
}

// Path is where name lives under the root.
func (l *Library) Path(name string) string {
	return filepath.Join(l.root, name)
}

// Create truncates or creates name for writing.
func (l *Library) Create(name string) (afero.File, error) {
	f, err := l.fs.OpenFile(l.Path(name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", model.ErrIO, name, err)
	}
	l.Invalidate()
	return f, nil
}

// Resolve returns the path of an existing regular file.
func (l *Library) Resolve(name string) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}
	p := l.Path(name)
	info, err := l.fs.Stat(p)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return "", fmt.Errorf("%w: %s", model.ErrFileNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", model.ErrIO, name, err)
	}
	return p, nil
}

// Delete removes name. A missing file is not an error.
func (l *Library) Delete(name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	err := l.fs.Remove(l.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugw("delete of missing file", "name", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", model.ErrIO, name, err)
	}
	l.Invalidate()
	log.Infow("deleted file", "name", name)
	return nil
}

// List returns the regular files in the root, skipping temp files, in
// directory order.
func (l *Library) List() ([]model.StoredFile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.valid {
		return append([]model.StoredFile(nil), l.cached...), nil
	}

	infos, err := afero.ReadDir(l.fs, l.root)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", model.ErrIO, l.root, err)
	}
	var res []model.StoredFile
	for _, info := range infos {
		if info.IsDir() || strings.HasSuffix(info.Name(), constants.TempFileExt) {
			continue
		}
		res = append(res, model.StoredFile{
			Name:    info.Name(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	l.cached = res
	l.valid = true
	return append([]model.StoredFile(nil), res...), nil
}

// Invalidate drops the cached listing.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.valid = false
	l.cached = nil
	l.mu.Unlock()
}
