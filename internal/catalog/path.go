package catalog

import (
	"fmt"
	"strings"

	"github.com/wowspack/wowspack/internal/idx"
)

// Separator joins node names into canonical catalog paths. Paths carry
// no leading separator: "gui/icon.png".
const Separator = "/"

// trimPath normalizes a user-supplied path for lookup.
func trimPath(path string) string {
	return strings.Trim(path, Separator)
}

// FullPath returns the canonical root-to-leaf path of id. Resolving a
// node whose parent chain loops returns a CyclicHierarchyError; a chain
// that reaches an undefined parent id fails too.
func (t *ResourceTree) FullPath(id uint64) (string, error) {
	if p, ok := t.paths[id]; ok {
		return p, nil
	}
	if err, ok := t.pathErrs[id]; ok {
		return "", err
	}
	if _, ok := t.nodes[id]; !ok {
		return "", fmt.Errorf("node %#x: %w", id, ErrNotFound)
	}
	return t.resolvePath(id)
}

// Resolve maps a catalog path back to its node id.
func (t *ResourceTree) Resolve(path string) (uint64, error) {
	id, ok := t.pathIndex[trimPath(path)]
	if !ok {
		return 0, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return id, nil
}

// buildPathIndex eagerly resolves every node's path and records the
// reverse path index. Conflicting paths keep the first-built id; nodes
// whose chain cannot be resolved get no path but stay addressable by
// id.
func (t *ResourceTree) buildPathIndex() {
	for _, id := range t.order {
		path, err := t.resolvePath(id)
		if err != nil {
			continue
		}
		if prev, taken := t.pathIndex[path]; taken {
			if prev != id {
				t.diagnostics = append(t.diagnostics, Diagnostic{
					Kind:   DuplicatePath,
					ID:     id,
					Path:   path,
					Detail: fmt.Sprintf("path already owned by id %#x", prev),
				})
			}
			continue
		}
		t.pathIndex[path] = id
	}
}

// resolvePath walks the parent chain of id to the root sentinel,
// memoizing every path computed along the way. Safe to call after the
// build only through FullPath, which consults the memo first.
func (t *ResourceTree) resolvePath(id uint64) (string, error) {
	seen := make(map[uint64]bool)
	var chain []uint64

	base := ""
	cur := id
	for {
		if p, ok := t.paths[cur]; ok {
			base = p
			break
		}
		if err, ok := t.pathErrs[cur]; ok {
			t.failChain(chain, err)
			return "", err
		}
		if seen[cur] {
			err := &CyclicHierarchyError{ID: cur}
			t.failChain(chain, err)
			return "", err
		}
		n, ok := t.nodes[cur]
		if !ok {
			err := fmt.Errorf("node %#x references undefined parent %#x", chain[len(chain)-1], cur)
			t.failChain(chain, err)
			t.diagnostics = append(t.diagnostics, Diagnostic{
				Kind:   DanglingParent,
				ID:     id,
				Detail: err.Error(),
			})
			return "", err
		}
		seen[cur] = true
		chain = append(chain, cur)
		if n.ParentID == idx.RootParentID {
			break
		}
		cur = n.ParentID
	}

	// Unwind from the root end of the chain, caching each prefix.
	for i := len(chain) - 1; i >= 0; i-- {
		n := t.nodes[chain[i]]
		if base == "" {
			base = n.Name
		} else {
			base = base + Separator + n.Name
		}
		t.paths[chain[i]] = base
	}
	return base, nil
}

// failChain caches the resolution failure for every node on the chain
// so later lookups do not repeat the walk.
func (t *ResourceTree) failChain(chain []uint64, err error) {
	for _, c := range chain {
		t.pathErrs[c] = err
	}
}
