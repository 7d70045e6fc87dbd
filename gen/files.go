package gen

import (
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/witgen/errors"
)

// Files is the named output of one generation run.
type Files struct {
	files map[string][]byte
}

func newFiles() *Files {
	return &Files{files: make(map[string][]byte)}
}

// Push adds or replaces a file. Names use forward slashes.
func (f *Files) Push(name string, contents []byte) {
	f.files[name] = contents
}

// Get returns the contents of name.
func (f *Files) Get(name string) ([]byte, bool) {
	c, ok := f.files[name]
	return c, ok
}

// Names returns all file names in sorted order.
func (f *Files) Names() []string {
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of files.
func (f *Files) Len() int {
	return len(f.files)
}

// WriteTo writes every file below dir, creating directories as needed.
func (f *Files) WriteTo(dir string) error {
	for _, name := range f.Names() {
		dst := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return errors.Wrap(errors.PhaseWrite, errors.KindInvalidInput, err, "create directory for "+name)
		}
		if err := os.WriteFile(dst, f.files[name], 0o644); err != nil {
			return errors.Wrap(errors.PhaseWrite, errors.KindInvalidInput, err, "write "+name)
		}
		Logger().Debug("wrote file", zap.String("path", dst), zap.Int("bytes", len(f.files[name])))
	}
	return nil
}
