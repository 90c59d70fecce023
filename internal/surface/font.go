package surface

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const fontSize = 13.0

var (
	faceOnce sync.Once
	face     font.Face
	faceErr  error
)

// textFace returns the shared monospace face used for text shapes.
func textFace() (font.Face, error) {
	faceOnce.Do(func() {
		ttfFont, err := truetype.Parse(gomono.TTF)
		if err != nil {
			faceErr = fmt.Errorf("failed to parse font: %w", err)
			return
		}
		face = truetype.NewFace(ttfFont, &truetype.Options{
			Size:    fontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return face, faceErr
}
