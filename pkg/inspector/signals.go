package inspector

import (
	"fmt"
	"strings"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/flatten"
	"github.com/grovetools/sigscope/pkg/host"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/pkg/snapshot"
)

// GetSignal reads path live through the host root, invoking computed
// accessors on the way. When the root does not have the path (or there is
// no root) the snapshot value is returned, so patch-only signals resolve too.
func (i *Inspector) GetSignal(path string) (any, bool) {
	if root, ok := i.coord.Root(); ok {
		if raw, found := resolve(root, path); found {
			v, err := flatten.Invoke(raw)
			if err != nil {
				return signal.Computed, true
			}
			if !host.IsUndefined(v) {
				return signal.Normalize(v), true
			}
		}
	}
	return i.Get(path)
}

// SetSignal writes value through the host accessor at path and merges the
// new value as a patch, so the write shows up in the history like any other
// update. Only accessors that implement host.Setter are writable.
func (i *Inspector) SetSignal(path string, value any) error {
	root, ok := i.coord.Root()
	if !ok {
		return errors.RootUnavailable("set signal")
	}
	raw, found := resolve(root, path)
	if !found {
		return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("signal not found: %s", path)).
			WithDetail("path", path)
	}
	setter, ok := raw.(host.Setter)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("signal %s is not writable", path)).
			WithDetail("path", path)
	}
	if err := setter.Set(value); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("failed to set %s", path)).
			WithDetail("path", path)
	}

	i.ApplyPatch(snapshot.Patch{path: value})
	return nil
}

// resolve walks root along path and returns the raw property found there.
// Keys may themselves contain dots, so at each level the longest matching
// key wins.
func resolve(node any, path string) (any, bool) {
	segments := signal.Split(path)
	for len(segments) > 0 {
		container, ok := flatten.Container(node)
		if !ok {
			return nil, false
		}
		matched := false
		for n := len(segments); n > 0; n-- {
			raw, found := lookup(container, strings.Join(segments[:n], signal.Separator))
			if !found {
				continue
			}
			segments = segments[n:]
			if len(segments) == 0 {
				return raw, true
			}
			node = raw
			if flatten.Classify(raw) == flatten.KindCallable {
				v, err := flatten.Invoke(raw)
				if err != nil {
					return nil, false
				}
				node = v
			}
			matched = true
			break
		}
		if !matched {
			return nil, false
		}
	}
	return nil, false
}

func lookup(c flatten.Traversable, key string) (v any, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	return c.Lookup(key)
}
