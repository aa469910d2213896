// Package fonts provides the font faces used to measure and rasterize
// chart text.
//
// The faces come from the Go font family shipped with golang.org/x/image,
// so text metrics are identical on every machine regardless of the fonts
// installed locally.
package fonts

import (
	"encoding/base64"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/stackplot/pkg/errors"
)

// Family names accepted by Face.
const (
	Sans = "sans"
	Bold = "bold"
	Mono = "mono"
)

// DefaultSize is the font size in pixels used when none is given.
const DefaultSize = 12

// FontFamily is the CSS font-family written into SVG output.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers without the Go fonts.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Helvetica, Arial, sans-serif`

var sources = map[string][]byte{
	Sans: goregular.TTF,
	Bold: gobold.TTF,
	Mono: gomono.TTF,
}

type faceKey struct {
	family string
	size   float64
}

var (
	mu     sync.Mutex
	parsed = map[string]*opentype.Font{}
	faces  = map[faceKey]font.Face{}
)

// TTF returns the raw font file of a family.
func TTF(family string) ([]byte, error) {
	b, ok := sources[family]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown font family %q", family)
	}
	return b, nil
}

// Face returns a face of the given family and pixel size. Faces are cached
// and shared; callers must not Close them.
func Face(family string, size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultSize
	}
	mu.Lock()
	defer mu.Unlock()

	key := faceKey{family, size}
	if f, ok := faces[key]; ok {
		return f, nil
	}
	otf, ok := parsed[family]
	if !ok {
		src, err := TTF(family)
		if err != nil {
			return nil, err
		}
		otf, err = opentype.Parse(src)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse font")
		}
		parsed[family] = otf
	}
	f, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create font face")
	}
	faces[key] = f
	return f, nil
}

// Cache for base64-encoded fonts (computed once on first access).
var (
	regularBase64     string
	regularBase64Once sync.Once
)

// SansBase64 returns the regular face as a base64 string, for embedding
// with an @font-face rule.
func SansBase64() string {
	regularBase64Once.Do(func() {
		regularBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return regularBase64
}
