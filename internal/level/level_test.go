package level

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/playmatatu/labyrinth/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLevel = `{
  "name": "sample",
  "size": {"w": 400, "h": 300},
  "start": {"x": 25, "y": 150},
  "end": {"pos": {"x": 330, "y": 120}, "size": {"w": 60, "h": 60}},
  "walls": [
    {"pos": {"x": 100, "y": 0}, "size": {"w": 20, "h": 200}},
    {"pos": {"x": 250, "y": 100}, "size": {"w": 20, "h": 200}}
  ],
  "holes": [{"x": 100, "y": 250}, {"x": 200, "y": 50}],
  "path": [{"x": 25, "y": 150}, {"x": 360, "y": 150}]
}`

func TestParseSampleLevel(t *testing.T) {
	lvl, err := Parse([]byte(sampleLevel))
	require.NoError(t, err)

	assert.Equal(t, "sample", lvl.Name)
	assert.Equal(t, geom.Size{W: 400, H: 300}, lvl.Size)
	assert.Equal(t, geom.NewPoint(25, 150), lvl.Start)
	assert.Equal(t, geom.NewRect(330, 120, 60, 60), lvl.End)
	assert.Equal(t, []geom.Rect{geom.NewRect(100, 0, 20, 200), geom.NewRect(250, 100, 20, 200)}, lvl.Walls)
	assert.Equal(t, []geom.Point{{X: 100, Y: 250}, {X: 200, Y: 50}}, lvl.Holes)
	assert.Len(t, lvl.Path, 2)

	s := lvl.Summary()
	assert.Equal(t, Summary{Name: "sample", Size: lvl.Size, Walls: 2, Holes: 2, Path: true}, s)
}

func TestParseWithoutOptionalLists(t *testing.T) {
	lvl, err := Parse([]byte(`{
		"name": "bare",
		"size": {"w": 100, "h": 100},
		"start": {"x": 50, "y": 50},
		"end": {"pos": {"x": 0, "y": 0}, "size": {"w": 10, "h": 10}}
	}`))
	require.NoError(t, err)

	assert.Empty(t, lvl.Walls)
	assert.NotNil(t, lvl.Walls)
	assert.Empty(t, lvl.Holes)
	assert.Nil(t, lvl.Path)
	assert.False(t, lvl.Summary().Path)
}

func TestParseRejectsMalformedLevels(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		message string
	}{
		{"not json", `{"name": `, "invalid level"},
		{"missing name", `{"size": {"w": 1, "h": 1}}`, "missing name"},
		{"empty name", `{"name": ""}`, "missing name"},
		{"missing size", `{"name": "x", "start": {"x": 1, "y": 1}}`, "missing size"},
		{"size without h", `{"name": "x", "size": {"w": 10}}`, "size needs both w and h"},
		{"negative size", `{"name": "x", "size": {"w": -10, "h": 10}}`, "size must be positive"},
		{"missing start", `{"name": "x", "size": {"w": 10, "h": 10}}`, "missing start"},
		{"start outside", `{"name": "x", "size": {"w": 10, "h": 10}, "start": {"x": 10, "y": 5}}`, "outside the board"},
		{"missing end", `{"name": "x", "size": {"w": 10, "h": 10}, "start": {"x": 5, "y": 5}}`, "missing end"},
		{"end without pos", `{"name": "x", "size": {"w": 10, "h": 10}, "start": {"x": 5, "y": 5}, "end": {"size": {"w": 1, "h": 1}}}`, "missing end.pos"},
		{"zero-width wall", `{"name": "x", "size": {"w": 10, "h": 10}, "start": {"x": 5, "y": 5},
			"end": {"pos": {"x": 0, "y": 0}, "size": {"w": 1, "h": 1}},
			"walls": [{"pos": {"x": 0, "y": 0}, "size": {"w": 0, "h": 1}}]}`, "walls[0].size must be positive"},
		{"hole without y", `{"name": "x", "size": {"w": 10, "h": 10}, "start": {"x": 5, "y": 5},
			"end": {"pos": {"x": 0, "y": 0}, "size": {"w": 1, "h": 1}},
			"holes": [{"x": 1, "y": 1}, {"x": 2}]}`, "holes[1] needs both x and y"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lvl, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.Nil(t, lvl)
			assert.ErrorIs(t, err, ErrInvalidLevel)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestLoadAndLoadFile(t *testing.T) {
	lvl, err := Load(strings.NewReader(sampleLevel))
	require.NoError(t, err)
	assert.Equal(t, "sample", lvl.Name)

	dir := t.TempDir()
	good := filepath.Join(dir, "sample.json")
	require.NoError(t, os.WriteFile(good, []byte(sampleLevel), 0o644))
	lvl, err = LoadFile(good)
	require.NoError(t, err)
	assert.Equal(t, "sample", lvl.Name)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name": "bad"}`), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Contains(t, err.Error(), "bad.json")

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidLevel)
}

func TestBuiltinLevelsAreValid(t *testing.T) {
	levels, err := Builtin()
	require.NoError(t, err)
	require.NotEmpty(t, levels)
	assert.Equal(t, []string{"first-steps", "open-floor"}, BuiltinNames())

	for name, lvl := range levels {
		assert.Equal(t, name, lvl.Name)
		assert.True(t, lvl.Bounds().Contains(lvl.Start), "%s start outside board", name)
		if len(lvl.Path) > 0 {
			assert.True(t, lvl.End.Contains(lvl.Path[len(lvl.Path)-1]), "%s path does not end in goal", name)
		}
	}
}

func TestSeedLevelsDirIsValid(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "levels", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		_, err := LoadFile(f)
		assert.NoError(t, err, f)
	}
}

func TestCatalogWithoutStoresServesBuiltins(t *testing.T) {
	c := NewCatalog(nil, nil, 0)
	ctx := context.Background()

	lvl, err := c.Get(ctx, "first-steps")
	require.NoError(t, err)
	assert.Equal(t, "first-steps", lvl.Name)

	_, err = c.Get(ctx, "no-such-level")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first-steps", list[0].Name)
	assert.Equal(t, "open-floor", list[1].Name)

	_, err = c.Put(ctx, []byte(sampleLevel))
	assert.Error(t, err)

	_, err = c.Put(ctx, []byte(`{"name": "broken"}`))
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
