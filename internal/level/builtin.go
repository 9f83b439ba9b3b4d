package level

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"sync"
)

//go:embed builtin/*.json
var builtinFS embed.FS

var (
	builtinOnce   sync.Once
	builtinLevels map[string]*Level
	builtinErr    error
)

// Builtin returns the levels compiled into the binary, keyed by name.
// A malformed embedded level is a build defect and is reported as an error.
func Builtin() (map[string]*Level, error) {
	builtinOnce.Do(func() {
		entries, err := builtinFS.ReadDir("builtin")
		if err != nil {
			builtinErr = fmt.Errorf("read builtin levels: %w", err)
			return
		}
		levels := make(map[string]*Level, len(entries))
		for _, e := range entries {
			data, err := builtinFS.ReadFile(path.Join("builtin", e.Name()))
			if err != nil {
				builtinErr = fmt.Errorf("read builtin level %s: %w", e.Name(), err)
				return
			}
			lvl, err := Parse(data)
			if err != nil {
				builtinErr = fmt.Errorf("builtin level %s: %w", e.Name(), err)
				return
			}
			levels[lvl.Name] = lvl
		}
		builtinLevels = levels
	})
	return builtinLevels, builtinErr
}

// BuiltinNames returns the sorted names of the built-in levels.
func BuiltinNames() []string {
	levels, _ := Builtin()
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
