package expander

import (
	"context"
	"io/fs"
	"path"
	"strings"

	"github.com/bcnelson/netguard/internal/domain"
)

var _ AppLocator = (*DirectoryLocator)(nil)

// DirectoryLocator finds apps by scanning *.app bundles under a fixed list
// of search roots, e.g. /Applications and /Applications/Utilities.
type DirectoryLocator struct {
	fsys  fs.FS
	roots []string
}

// NewDirectoryLocator creates a locator over fsys. Roots are absolute OS
// paths, searched in the given order.
func NewDirectoryLocator(fsys fs.FS, roots []string) *DirectoryLocator {
	fsRoots := make([]string, 0, len(roots))
	for _, r := range roots {
		fsRoots = append(fsRoots, FSPath(r))
	}
	return &DirectoryLocator{fsys: fsys, roots: fsRoots}
}

// BundleLocation returns the first app under the roots, at most two levels
// deep, whose Info.plist declares id.
func (l *DirectoryLocator) BundleLocation(ctx context.Context, id domain.AppIdentifier) (string, error) {
	for _, root := range l.roots {
		entries, err := fs.ReadDir(l.fsys, root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			if !entry.IsDir() {
				continue
			}
			p := path.Join(root, entry.Name())
			if isApp(entry.Name()) {
				if found, ok := ReadBundleIdentifier(l.fsys, p); ok && found == id {
					return p, nil
				}
				continue
			}
			if match, ok := l.findIn(p, id); ok {
				return match, nil
			}
		}
	}
	return "", domain.ErrAppNotFound
}

func (l *DirectoryLocator) findIn(dir string, id domain.AppIdentifier) (string, bool) {
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() || !isApp(entry.Name()) {
			continue
		}
		p := path.Join(dir, entry.Name())
		if found, ok := ReadBundleIdentifier(l.fsys, p); ok && found == id {
			return p, true
		}
	}
	return "", false
}

func isApp(name string) bool {
	return strings.EqualFold(path.Ext(name), ".app")
}
