package membership

import (
	"os"
	"strings"

	"github.com/eleven-am/barrier/internal/domain"
)

// FileSource reads a newline-delimited list of hostnames. Lines are taken
// verbatim; a final newline does not start an extra entry.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Entries() ([]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, domain.NewConfigError("read membership file", err)
	}
	return SplitEntries(string(data)), nil
}

func (s *FileSource) Name() string {
	return "file:" + s.Path
}

// SplitEntries splits text into lines the way a line reader would.
func SplitEntries(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

type StaticSource struct {
	entries []string
}

func NewStaticSource(entries []string) *StaticSource {
	return &StaticSource{entries: append([]string(nil), entries...)}
}

func (s *StaticSource) Entries() ([]string, error) {
	return append([]string(nil), s.entries...), nil
}

func (s *StaticSource) Name() string {
	return "static"
}
