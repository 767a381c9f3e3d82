package textgen

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"
)

// shrinkImage re-encodes an image as JPEG, stepping quality down and
// then halving dimensions until it fits the byte budget. Images
// already under budget pass through untouched.
func shrinkImage(data []byte, budget int) ([]byte, error) {
	if len(data) <= budget {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	for quality := 85; quality >= 30; quality -= 15 {
		encoded, err := encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(encoded) <= budget {
			return encoded, nil
		}
	}

	// Quality alone was not enough; halve dimensions until it fits or
	// the image becomes trivially small.
	for {
		img = halve(img)
		bounds := img.Bounds()
		encoded, err := encodeJPEG(img, 60)
		if err != nil {
			return nil, err
		}
		if len(encoded) <= budget || bounds.Dx() <= 64 || bounds.Dy() <= 64 {
			return encoded, nil
		}
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// halve downsamples an image to half width and height by point
// sampling.
func halve(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx()/2, bounds.Dy()/2
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, img.At(bounds.Min.X+x*2, bounds.Min.Y+y*2))
		}
	}
	return out
}
