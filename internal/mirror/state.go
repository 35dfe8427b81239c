// Package mirror はサーバー上のいいね・ブックマーク状態のローカルコピーを管理する。
//
// 画面表示はこのコピーを参照し、操作直後は楽観的に更新する。
// サーバーから取得した状態は常にローカルの推測より優先され、
// 古いリクエストの応答は新しい応答を上書きしない。
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hitoshi/newsman/internal/client"
)

// Source はサーバー上の状態を取得する。client.Clientが実装する。
type Source interface {
	LikedArticles(ctx context.Context) ([]client.Article, error)
	Bookmarks(ctx context.Context) ([]client.Bookmark, error)
}

var _ Source = (*client.Client)(nil)

// Snapshot はある時点のいいね・ブックマーク状態。
type Snapshot struct {
	Liked      map[string]bool   // タイトル → いいね済み
	Bookmarked map[string]string // タイトル → ブックマークID
}

// State はいいね・ブックマーク状態のローカルコピー。
// 取得のたびにシーケンス番号を払い出し、最新の番号の応答だけを反映する。
type State struct {
	source Source
	logger *slog.Logger

	mu         sync.RWMutex
	seq        uint64
	liked      map[string]bool
	bookmarked map[string]string
}

// New はStateを生成する。
func New(source Source, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		source:     source,
		logger:     logger,
		liked:      map[string]bool{},
		bookmarked: map[string]string{},
	}
}

func titleKey(title string) string {
	return strings.TrimSpace(title)
}

// Refresh はサーバーから状態を取得し、丸ごと置き換える。
// 取得中に別のRefreshやResetが行われた場合、この応答は破棄してfalseを返す。
// 取得に失敗した場合は状態を変更しない。
func (s *State) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	likes, err := s.source.LikedArticles(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch liked articles: %w", err)
	}
	bookmarks, err := s.source.Bookmarks(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch bookmarks: %w", err)
	}

	liked := make(map[string]bool, len(likes))
	for _, a := range likes {
		liked[titleKey(a.Title)] = true
	}
	bookmarked := make(map[string]string, len(bookmarks))
	for _, b := range bookmarks {
		bookmarked[titleKey(b.Article.Title)] = b.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.logger.Debug("discarding stale mirror refresh",
			slog.Uint64("seq", seq),
			slog.Uint64("latest", s.seq),
		)
		return false, nil
	}
	s.liked = liked
	s.bookmarked = bookmarked
	return true, nil
}

// ApplyOptimisticLike はいいね操作の結果を応答前にローカルへ反映する。
// 次のRefreshで上書きされる。
func (s *State) ApplyOptimisticLike(title string, liked bool) {
	key := titleKey(title)
	s.mu.Lock()
	defer s.mu.Unlock()
	if liked {
		s.liked[key] = true
	} else {
		delete(s.liked, key)
	}
}

// ApplyOptimisticBookmark はブックマーク操作の結果をローカルへ反映する。
// bookmarkIDが空の場合はブックマーク解除として扱う。
func (s *State) ApplyOptimisticBookmark(title, bookmarkID string) {
	key := titleKey(title)
	s.mu.Lock()
	defer s.mu.Unlock()
	if bookmarkID != "" {
		s.bookmarked[key] = bookmarkID
	} else {
		delete(s.bookmarked, key)
	}
}

// Reset はログアウト時に状態を消去する。進行中のRefreshの応答は破棄される。
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.liked = map[string]bool{}
	s.bookmarked = map[string]string{}
}

// IsLiked は記事がいいね済みかを返す。
func (s *State) IsLiked(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liked[titleKey(title)]
}

// BookmarkID は記事のブックマークIDを返す。
func (s *State) BookmarkID(title string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bookmarked[titleKey(title)]
	return id, ok
}

// Snapshot は現在の状態のコピーを返す。
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Liked:      make(map[string]bool, len(s.liked)),
		Bookmarked: make(map[string]string, len(s.bookmarked)),
	}
	for k, v := range s.liked {
		snap.Liked[k] = v
	}
	for k, v := range s.bookmarked {
		snap.Bookmarked[k] = v
	}
	return snap
}
