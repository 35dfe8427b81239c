package avatar

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// 保存する画像の最大辺と品質。
const (
	MaxDimension = 512
	jpegQuality  = 85
)

// Normalize は画像をデコードし、MaxDimension以内に縮小してJPEGで再エンコードする。
// EXIFの向き情報は適用される。元画像が小さい場合は拡大しない。
func Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
