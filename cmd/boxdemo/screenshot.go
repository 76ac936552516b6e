package main

import (
	"image"
	"image/jpeg"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// saveScreenshot reads the current framebuffer and writes it to path as
// a JPEG.
func saveScreenshot(path string, width, height int) error {
	pixels := make([]byte, width*height*4)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	flipRows(pixels, width*4)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// flipRows reverses the row order of an image buffer in place; GL's
// origin is bottom-left.
func flipRows(pixels []byte, rowLen int) {
	rows := len(pixels) / rowLen
	tmp := make([]byte, rowLen)
	for y := 0; y < rows/2; y++ {
		top := y * rowLen
		bot := (rows - 1 - y) * rowLen
		copy(tmp, pixels[top:top+rowLen])
		copy(pixels[top:top+rowLen], pixels[bot:bot+rowLen])
		copy(pixels[bot:bot+rowLen], tmp)
	}
}
