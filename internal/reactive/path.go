package reactive

import (
	"strings"

	errspkg "github.com/drblury/stateflow/internal/reactive/errors"
)

// resolvePath walks a dot-separated property path from root and returns the
// container owning the final segment together with the leaf key. Every
// intermediate segment must exist as a key of the current container (either a
// *State or a raw map left unwrapped); a missing segment, or a segment landing
// on a value that has no keys at all, fails with the invalid_object_path kind
// carrying the original full path. The leaf itself is never read or written
// here, so an absent leaf key is not an error.
func resolvePath(root *State, path string) (container any, leaf string, err error) {
	segments := strings.Split(path, ".")
	leaf = segments[len(segments)-1]

	var current any = root
	for _, segment := range segments[:len(segments)-1] {
		next, ok := segmentValue(current, segment)
		if !ok {
			return nil, "", errspkg.NewInvalidObjectPath(path)
		}
		current = next
	}
	return current, leaf, nil
}

// segmentValue reads one intermediate segment from a container. Values that
// are neither states nor raw maps cannot own properties and end the walk.
func segmentValue(container any, segment string) (any, bool) {
	switch c := container.(type) {
	case *State:
		if c == nil || c.data == nil {
			return nil, false
		}
		v, ok := c.data[segment]
		return v, ok
	case map[string]any:
		v, ok := c[segment]
		return v, ok
	default:
		return nil, false
	}
}

// resolveOwner resolves path and additionally requires the owning container
// to be a registry-bearing state. Raw maps, nil states and states not built
// by MakeReactive fail with the non_reactive_state kind. A dead root is
// checked up front so nil states report as non-reactive rather than as a
// failed path walk.
func resolveOwner(root *State, path string) (*State, string, error) {
	if root == nil || root.registry == nil {
		return nil, "", errspkg.NewNonReactiveState(path)
	}
	container, leaf, err := resolvePath(root, path)
	if err != nil {
		return nil, "", err
	}
	owner, ok := container.(*State)
	if !ok || owner == nil || owner.registry == nil {
		return nil, "", errspkg.NewNonReactiveState(path)
	}
	return owner, leaf, nil
}
