// Package level describes labyrinth boards and loads them from their JSON
// description. A Level is immutable once loaded and may be shared by any
// number of games.
package level

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/playmatatu/labyrinth/internal/geom"
)

// ErrInvalidLevel is returned (wrapped) for any malformed level description.
var ErrInvalidLevel = errors.New("invalid level")

// Level is the static description of one board.
type Level struct {
	Name  string       `json:"name"`
	Size  geom.Size    `json:"size"`
	Start geom.Point   `json:"start"`
	End   geom.Rect    `json:"end"`
	Walls []geom.Rect  `json:"walls"`
	Holes []geom.Point `json:"holes"`
	// Path is an optional route from start to goal followed by the autopilot.
	Path []geom.Point `json:"path,omitempty"`
}

// Summary is the short form used by catalog listings.
type Summary struct {
	Name  string    `json:"name"`
	Size  geom.Size `json:"size"`
	Walls int       `json:"walls"`
	Holes int       `json:"holes"`
	Path  bool      `json:"has_path"`
}

func (l *Level) Summary() Summary {
	return Summary{
		Name:  l.Name,
		Size:  l.Size,
		Walls: len(l.Walls),
		Holes: len(l.Holes),
		Path:  len(l.Path) >= 2,
	}
}

// Bounds returns the board as a rectangle anchored at the origin.
func (l *Level) Bounds() geom.Rect {
	return geom.Rect{Size: l.Size}
}

// Wire format. Pointers let the parser tell a missing field from a zero one.
type pointDoc struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type sizeDoc struct {
	W *float64 `json:"w"`
	H *float64 `json:"h"`
}

type rectDoc struct {
	Pos  *pointDoc `json:"pos"`
	Size *sizeDoc  `json:"size"`
}

type levelDoc struct {
	Name  *string    `json:"name"`
	Size  *sizeDoc   `json:"size"`
	Start *pointDoc  `json:"start"`
	End   *rectDoc   `json:"end"`
	Walls []rectDoc  `json:"walls"`
	Holes []pointDoc `json:"holes"`
	Path  []pointDoc `json:"path"`
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidLevel, fmt.Sprintf(format, args...))
}

// Parse decodes and validates a JSON level description.
func Parse(data []byte) (*Level, error) {
	var doc levelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return doc.build()
}

// Load reads a level description from r.
func Load(r io.Reader) (*Level, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a level description from the named file.
func LoadFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lvl, nil
}

func (d *levelDoc) build() (*Level, error) {
	if d.Name == nil || *d.Name == "" {
		return nil, invalid("missing name")
	}
	lvl := &Level{Name: *d.Name}

	var err error
	if lvl.Size, err = d.Size.size("size"); err != nil {
		return nil, err
	}
	if lvl.Start, err = d.Start.point("start"); err != nil {
		return nil, err
	}
	if !lvl.Bounds().Contains(lvl.Start) {
		return nil, invalid("start (%g, %g) is outside the board", lvl.Start.X, lvl.Start.Y)
	}
	if lvl.End, err = d.End.rect("end"); err != nil {
		return nil, err
	}

	lvl.Walls = make([]geom.Rect, 0, len(d.Walls))
	for i := range d.Walls {
		w, err := d.Walls[i].rect(fmt.Sprintf("walls[%d]", i))
		if err != nil {
			return nil, err
		}
		lvl.Walls = append(lvl.Walls, w)
	}

	lvl.Holes = make([]geom.Point, 0, len(d.Holes))
	for i := range d.Holes {
		p, err := d.Holes[i].point(fmt.Sprintf("holes[%d]", i))
		if err != nil {
			return nil, err
		}
		lvl.Holes = append(lvl.Holes, p)
	}

	for i := range d.Path {
		p, err := d.Path[i].point(fmt.Sprintf("path[%d]", i))
		if err != nil {
			return nil, err
		}
		lvl.Path = append(lvl.Path, p)
	}

	return lvl, nil
}

func (p *pointDoc) point(field string) (geom.Point, error) {
	if p == nil {
		return geom.Point{}, invalid("missing %s", field)
	}
	if p.X == nil || p.Y == nil {
		return geom.Point{}, invalid("%s needs both x and y", field)
	}
	return geom.Point{X: *p.X, Y: *p.Y}, nil
}

func (s *sizeDoc) size(field string) (geom.Size, error) {
	if s == nil {
		return geom.Size{}, invalid("missing %s", field)
	}
	if s.W == nil || s.H == nil {
		return geom.Size{}, invalid("%s needs both w and h", field)
	}
	if *s.W <= 0 || *s.H <= 0 {
		return geom.Size{}, invalid("%s must be positive, got %gx%g", field, *s.W, *s.H)
	}
	return geom.Size{W: *s.W, H: *s.H}, nil
}

func (r *rectDoc) rect(field string) (geom.Rect, error) {
	if r == nil {
		return geom.Rect{}, invalid("missing %s", field)
	}
	pos, err := r.Pos.point(field + ".pos")
	if err != nil {
		return geom.Rect{}, err
	}
	size, err := r.Size.size(field + ".size")
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.Rect{Pos: pos, Size: size}, nil
}
