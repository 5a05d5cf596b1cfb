package daemon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const trayIconSize = 16

// trayIcon draws a single filled dot as a PNG
func trayIcon() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, trayIconSize, trayIconSize))
	dot := color.NRGBA{R: 0x4a, G: 0xde, B: 0x80, A: 0xff}

	c := float64(trayIconSize-1) / 2
	r2 := c * c
	for y := 0; y < trayIconSize; y++ {
		for x := 0; x < trayIconSize; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			if dx*dx+dy*dy <= r2 {
				img.SetNRGBA(x, y, dot)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
