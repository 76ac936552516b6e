package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-theft-auto/overlay"
)

// Scene describes the window and the boxes the demo draws.
type Scene struct {
	Window struct {
		Width  int    `yaml:"width"`
		Height int    `yaml:"height"`
		Title  string `yaml:"title"`
	} `yaml:"window"`
	Effect string    `yaml:"effect"`
	Aspect string    `yaml:"aspect"`
	Boxes  []BoxSpec `yaml:"boxes"`
	dir    string    // directory of the scene file
}

// BoxSpec is one box of a scene.
type BoxSpec struct {
	X      float32  `yaml:"x"`
	Y      float32  `yaml:"y"`
	Width  float32  `yaml:"width"`
	Height float32  `yaml:"height"`
	Color  hexColor `yaml:"color"`
	Effect string   `yaml:"effect"` // overrides Scene.Effect
	Hidden bool     `yaml:"hidden"`
}

// hexColor is an ARGB color written as "0xAARRGGBB" or "#AARRGGBB".
type hexColor overlay.Color

// UnmarshalYAML implements yaml.Unmarshaler for hexColor.
func (c *hexColor) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := parseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = hexColor(v)
	return nil
}

func parseColor(s string) (overlay.Color, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	switch len(h) {
	case 6:
		h = "FF" + h
	case 8:
	default:
		return 0, fmt.Errorf("color %q: want 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return overlay.Color(v), nil
}

// LoadScene reads and validates a scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// ParseScene parses scene YAML and fills in defaults.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	if s.Window.Width == 0 {
		s.Window.Width = 1366
	}
	if s.Window.Height == 0 {
		s.Window.Height = 768
	}
	if s.Window.Title == "" {
		s.Window.Title = "boxdemo"
	}
	if s.Window.Width < 0 || s.Window.Height < 0 {
		return nil, fmt.Errorf("window size %dx%d", s.Window.Width, s.Window.Height)
	}
	if s.Aspect == "" {
		s.Aspect = "legacy"
	}
	if _, err := s.aspect(); err != nil {
		return nil, err
	}

	for i, b := range s.Boxes {
		if b.Effect == "" && s.Effect == "" {
			return nil, fmt.Errorf("box %d: no effect", i)
		}
	}
	return &s, nil
}

// aspect returns the projection aspect option for the scene, or nil for
// the legacy default.
func (s *Scene) aspect() (overlay.Option, error) {
	switch s.Aspect {
	case "legacy":
		return nil, nil
	case "window":
		return overlay.WithAspect(float32(s.Window.Width) / float32(s.Window.Height)), nil
	}
	v, err := strconv.ParseFloat(s.Aspect, 32)
	if err != nil || v <= 0 {
		return nil, fmt.Errorf("aspect %q: want legacy, window or a positive number", s.Aspect)
	}
	return overlay.WithAspect(float32(v)), nil
}

// effectPath resolves a box's effect relative to the scene file.
func (s *Scene) effectPath(b BoxSpec) string {
	p := b.Effect
	if p == "" {
		p = s.Effect
	}
	if filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}

// Build creates and initializes every box of the scene on dev and adds
// it to reg. Boxes that fail to initialize are still added so their ids
// stay stable, but remain invisible.
func (s *Scene) Build(dev overlay.Device, reg *overlay.Registry, opts ...overlay.Option) ([]overlay.BoxID, error) {
	aspect, err := s.aspect()
	if err != nil {
		return nil, err
	}
	if aspect != nil {
		opts = append(opts, aspect)
	}

	var failed int
	ids := make([]overlay.BoxID, 0, len(s.Boxes))
	for _, spec := range s.Boxes {
		b := overlay.New(opts...)
		if err := b.Init(dev, s.effectPath(spec), spec.Width, spec.Height, spec.X, spec.Y, overlay.Color(spec.Color)); err != nil {
			failed++
		} else {
			b.FitToScreen(float32(s.Window.Width), float32(s.Window.Height))
			b.Show(!spec.Hidden)
		}
		ids = append(ids, reg.Add(b))
	}
	if failed == len(s.Boxes) && failed > 0 {
		return ids, fmt.Errorf("none of the %d boxes initialized", failed)
	}
	return ids, nil
}
