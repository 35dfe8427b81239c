package avatar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/newsman/internal/model"
)

// Pipeline はdata URIの検証・縮小・保存を順に行う。
type Pipeline struct {
	store    Store
	maxBytes int64
	newID    func() string
}

// NewPipeline はPipelineを生成する。
func NewPipeline(store Store, maxBytes int64) *Pipeline {
	return &Pipeline{
		store:    store,
		maxBytes: maxBytes,
		newID:    uuid.NewString,
	}
}

// Process は画像を avatars/<userID>/<uuid>.jpg として保存し、参照URLを返す。
// 入力不正はINVALID_IMAGEのAPIErrorになる。
func (p *Pipeline) Process(ctx context.Context, userID, dataURI string) (string, error) {
	parsed, err := ParseDataURI(dataURI, p.maxBytes)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			return "", model.NewInvalidImageError(fmt.Sprintf("image must be %d bytes or smaller", p.maxBytes))
		case errors.Is(err, ErrUnsupportedType):
			return "", model.NewInvalidImageError("unsupported image type")
		default:
			return "", model.NewInvalidImageError("expected a base64 data URI")
		}
	}

	normalized, err := Normalize(parsed.Data)
	if err != nil {
		slog.Debug("avatar decode failed", slog.String("user_id", userID), slog.String("error", err.Error()))
		return "", model.NewInvalidImageError("image data could not be decoded")
	}

	key := fmt.Sprintf("avatars/%s/%s.jpg", userID, p.newID())
	url, err := p.store.Put(ctx, key, normalized, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return url, nil
}
