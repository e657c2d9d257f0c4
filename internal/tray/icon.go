package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
)

// loadIcon returns the first readable candidate icon, or the generated
// fallback when none load.
func (t *Tray) loadIcon() []byte {
	for _, path := range t.iconPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			t.log.Warn("icon is not a valid png", "path", path, "error", err)
			continue
		}
		return data
	}
	return fallbackIcon()
}

// fallbackIcon generates a 64x64 solid reddish-orange PNG so the tray entry
// is always visible even without installed assets.
func fallbackIcon() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{R: 200, G: 80, B: 20, A: 255}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
