package preview

import (
	"bytes"
	"fmt"
	"image"

	"github.com/HugoSmits86/nativewebp"
)

// EncodeWebP encodes a rendered frame as lossless WebP for the preview
// stream.
func EncodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("preview: encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
