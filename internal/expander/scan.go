package expander

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/bcnelson/netguard/internal/domain"
)

// EmbeddedIdentifiers walks the bundle at root and returns the identifiers
// of every bundle nested inside it, in traversal order without duplicates.
// The bundle's own identifier (self) is not included.
//
// The walk uses an explicit stack; directory entries are visited in name
// order and symlinks are never followed.
func EmbeddedIdentifiers(ctx context.Context, fsys fs.FS, root string, self domain.AppIdentifier) ([]domain.AppIdentifier, error) {
	info, err := fs.Stat(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("stat bundle %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bundle %s is not a directory", root)
	}

	var (
		ids     []domain.AppIdentifier
		seenID  = map[domain.AppIdentifier]struct{}{self: {}}
		visited = map[string]struct{}{}
		stack   = []string{root}
	)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[dir]; ok {
			continue
		}
		visited[dir] = struct{}{}

		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			// Unreadable subtrees are skipped; the rest of the bundle still counts.
			continue
		}

		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			if !entry.IsDir() || entry.Type()&fs.ModeSymlink != 0 {
				continue
			}
			stack = append(stack, path.Join(dir, entry.Name()))
		}

		for _, entry := range entries {
			if !entry.IsDir() || entry.Type()&fs.ModeSymlink != 0 || !IsBundleDir(entry.Name()) {
				continue
			}
			id, ok := ReadBundleIdentifier(fsys, path.Join(dir, entry.Name()))
			if !ok {
				continue
			}
			if _, dup := seenID[id]; dup {
				continue
			}
			seenID[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	return ids, nil
}
