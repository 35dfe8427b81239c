// Package avatar はプロフィール画像の検証・縮小・保存を行う。
package avatar

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// 受け付ける画像のMIMEタイプ。
var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

var (
	// ErrNotDataURI はdata:スキームでない入力を表す。
	ErrNotDataURI = errors.New("not a base64 data URI")
	// ErrUnsupportedType は受け付けない画像形式を表す。
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrTooLarge はデコード後のサイズが上限を超えたことを表す。
	ErrTooLarge = errors.New("image exceeds size limit")
)

// DataURI はパース済みのdata URI。
type DataURI struct {
	MediaType string
	Data      []byte
}

// ParseDataURI は "data:image/png;base64,...." 形式の文字列をデコードする。
// maxBytesが正の場合、デコード後のバイト数がそれを超えるとErrTooLargeを返す。
func ParseDataURI(s string, maxBytes int64) (*DataURI, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, ErrNotDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrNotDataURI
	}

	mediaType, params, _ := strings.Cut(header, ";")
	if !strings.EqualFold(params, "base64") {
		return nil, ErrNotDataURI
	}
	mediaType = strings.ToLower(mediaType)
	if !allowedMediaTypes[mediaType] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
	}

	// base64のデコード後サイズはおおよそ3/4になる。先に概算で弾く。
	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, ErrTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	return &DataURI{MediaType: mediaType, Data: data}, nil
}
