package service

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/deck"
)

// Palette keys.
const (
	ColorReserved   = "reserved"
	ColorDeclined   = "declined"
	ColorMemberLeft = "member_left"
	ColorOnLand     = "on_land"
	ColorUnknown    = "unknown"
	ColorScheduled  = "scheduled"
)

// Palette maps a map status to its fill color.
type Palette map[string]deck.RGB

// DefaultPalette returns the colors used when no colors file overrides them.
func DefaultPalette() Palette {
	return Palette{
		ColorReserved:   {R: 214, G: 245, B: 214},
		ColorDeclined:   {R: 255, G: 230, B: 230},
		ColorMemberLeft: {R: 255, G: 153, B: 255},
		ColorOnLand:     {R: 230, G: 230, B: 255},
		ColorUnknown:    {R: 255, G: 255, B: 255},
		ColorScheduled:  {R: 255, G: 255, B: 26},
	}
}

// Keys returns the palette keys in sorted order.
func (p Palette) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadPalette overlays the colors of path on the defaults. Each entry is either
// [r, g, b] or a hex string. The file format follows its extension (json, yaml,
// toml). A missing or unreadable file leaves the defaults in place.
func LoadPalette(path string, logger *zap.Logger) Palette {
	p := DefaultPalette()
	if path == "" {
		return p
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Warn("colors file not found, using default colors", zap.String("file", path))
		return p
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		logger.Error("could not read colors file", zap.String("file", path), zap.Error(err))
		return p
	}
	for key, raw := range v.AllSettings() {
		c, err := parseColor(raw)
		if err != nil {
			logger.Error("could not read color", zap.String("file", path), zap.String("key", key), zap.Error(err))
			continue
		}
		p[key] = c
	}
	return p
}

func parseColor(raw any) (deck.RGB, error) {
	switch v := raw.(type) {
	case string:
		return deck.ParseHex(v)
	case []any:
		if len(v) != 3 {
			return deck.RGB{}, fmt.Errorf("want 3 components, got %d", len(v))
		}
		var rgb [3]uint8
		for i, comp := range v {
			n, err := component(comp)
			if err != nil {
				return deck.RGB{}, err
			}
			rgb[i] = n
		}
		return deck.RGB{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
	default:
		return deck.RGB{}, fmt.Errorf("unsupported color value %v", raw)
	}
}

func component(v any) (uint8, error) {
	var n float64
	switch x := v.(type) {
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case float64:
		n = x
	default:
		return 0, fmt.Errorf("color component %v is not a number", v)
	}
	if n < 0 || n > 255 || n != float64(int(n)) {
		return 0, fmt.Errorf("color component %v out of range", v)
	}
	return uint8(n), nil
}
