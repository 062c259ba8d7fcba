package canvas2d

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Region describes a named sub-rectangle within an atlas page.
type Region struct {
	Page      uint16 // index into Atlas.Pages
	X, Y      uint16 // top-left corner on the page
	Width     uint16 // sprite width as drawn (may differ from OriginalW if trimmed)
	Height    uint16 // sprite height as drawn (may differ from OriginalH if trimmed)
	OriginalW uint16 // untrimmed sprite width as authored
	OriginalH uint16 // untrimmed sprite height as authored
	OffsetX   int16  // horizontal trim offset
	OffsetY   int16  // vertical trim offset
	Rotated   bool   // stored 90 degrees clockwise on the page
}

// Atlas holds one or more page images and a map of named regions. Pages are
// ordinary images and go through the texture cache like any other source.
type Atlas struct {
	Pages   []*Image
	regions map[string]Region
}

// Region returns the region registered under name.
func (a *Atlas) Region(name string) (Region, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Len returns the number of regions.
func (a *Atlas) Len() int { return len(a.regions) }

// LoadAtlas parses TexturePacker JSON data and associates the given page
// images. Both the hash format (a single "frames" object) and the array
// format ("textures" array with per-page frame lists) are accepted.
func LoadAtlas(jsonData []byte, pages []*Image) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("canvas2d: parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:   pages,
		regions: make(map[string]Region),
	}

	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, atlas); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New(`canvas2d: atlas JSON has neither "frames" nor "textures" key`)
	}

	for name, r := range atlas.regions {
		if int(r.Page) >= len(pages) {
			return nil, fmt.Errorf("canvas2d: atlas region %q on page %d, have %d pages", name, r.Page, len(pages))
		}
	}
	return atlas, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func parseHashFrames(raw json.RawMessage, page uint16, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("canvas2d: parse atlas frames: %w", err)
	}
	for name, f := range frames {
		atlas.regions[name] = frameToRegion(f, page)
	}
	return nil
}

func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("canvas2d: parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		for name, f := range tex.Frames {
			atlas.regions[name] = frameToRegion(f, uint16(i))
		}
	}
	return nil
}

func frameToRegion(f jsonFrame, page uint16) Region {
	return Region{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}

// DrawRegion draws the named atlas region with the top-left corner of its
// untrimmed bounds at (x, y). Rotated regions are turned back upright.
func (c *Context) DrawRegion(a *Atlas, name string, x, y float64) error {
	r, ok := a.Region(name)
	if !ok {
		return fmt.Errorf("canvas2d: atlas region %q: %w", name, ErrUnknownRegion)
	}
	page := a.Pages[r.Page]
	dx := x + float64(r.OffsetX)
	dy := y + float64(r.OffsetY)
	w, h := float64(r.Width), float64(r.Height)
	if !r.Rotated {
		return c.DrawImage(page, float64(r.X), float64(r.Y), w, h, dx, dy, w, h)
	}

	// The page stores the sprite rotated clockwise, h wide and w tall.
	c.Save()
	c.Translate(dx, dy+h)
	c.Rotate(-math.Pi / 2)
	err := c.DrawImage(page, float64(r.X), float64(r.Y), h, w, 0, 0, h, w)
	_ = c.Restore()
	return err
}
