package pose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mirrorstage/go-avatar/internal/httpc"
)

// IsURL reports whether the source should be fetched over HTTP.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads a pose from a local path or an http(s) URL, converts it
// to rig convention and synthesizes the finger curls. The snapshot
// name is the file base without extension.
func Load(ctx context.Context, source string) (*Snapshot, error) {
	if source == "" {
		return nil, ErrEmptySource
	}

	var (
		data []byte
		err  error
	)
	if IsURL(source) {
		data, err = httpc.FetchBytes(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("pose: load %q: %w", source, err)
	}

	s, err := Parse(data, nameFrom(source))
	if err != nil {
		return nil, err
	}
	s.Source = source
	s.LoadedAt = time.Now()
	SynthesizeFingers(s)
	return s, nil
}

func nameFrom(source string) string {
	base := filepath.Base(source)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." || base == "/" {
		return "pose"
	}
	return base
}
