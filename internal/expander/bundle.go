package expander

import (
	"io/fs"
	"path"
	"strings"

	"howett.net/plist"

	"github.com/bcnelson/netguard/internal/domain"
)

// Directory extensions that mark an executable or loadable bundle.
var bundleExtensions = map[string]struct{}{
	".app":             {},
	".appex":           {},
	".xpc":             {},
	".framework":       {},
	".bundle":          {},
	".plugin":          {},
	".systemextension": {},
}

// Info.plist locations relative to a bundle root, in lookup order.
var infoPlistPaths = []string{
	"Contents/Info.plist",
	"Resources/Info.plist",
	"Info.plist",
}

type infoPlist struct {
	BundleIdentifier string `plist:"CFBundleIdentifier"`
}

// IsBundleDir reports whether name has a bundle directory extension.
func IsBundleDir(name string) bool {
	_, ok := bundleExtensions[strings.ToLower(path.Ext(name))]
	return ok
}

// ReadBundleIdentifier returns the CFBundleIdentifier declared by the bundle
// at dir. Both XML and binary property lists are accepted.
func ReadBundleIdentifier(fsys fs.FS, dir string) (domain.AppIdentifier, bool) {
	for _, rel := range infoPlistPaths {
		data, err := fs.ReadFile(fsys, path.Join(dir, rel))
		if err != nil {
			continue
		}
		var info infoPlist
		if _, err := plist.Unmarshal(data, &info); err != nil {
			continue
		}
		if id := strings.TrimSpace(info.BundleIdentifier); id != "" {
			return domain.AppIdentifier(id), true
		}
	}
	return "", false
}

// FSPath converts an absolute OS path into a path usable with an fs.FS
// rooted at "/".
func FSPath(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	if p == "/" {
		return "."
	}
	return strings.TrimPrefix(p, "/")
}
