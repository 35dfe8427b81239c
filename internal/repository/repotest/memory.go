// Package repotest はテスト用のインメモリリポジトリ実装を提供する。
// PostgreSQLの一意制約・並び順と同じ振る舞いを再現する。
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/newsman/internal/model"
	"github.com/hitoshi/newsman/internal/repository"
)

// Store は全リポジトリで共有するインメモリデータ。
type Store struct {
	mu        sync.Mutex
	users     map[string]*model.User
	articles  map[string]*model.Article // id -> article
	bookmarks map[string]*model.Bookmark
	likes     map[string]*model.Like
	history   map[string]*model.HistoryEntry

	// Err が設定されている場合、全操作がこのエラーを返す。
	Err error
}

// NewStore は空のStoreを生成する。
func NewStore() *Store {
	return &Store{
		users:     make(map[string]*model.User),
		articles:  make(map[string]*model.Article),
		bookmarks: make(map[string]*model.Bookmark),
		likes:     make(map[string]*model.Like),
		history:   make(map[string]*model.HistoryEntry),
	}
}

// ArticleCount は保存済み記事の件数を返す。
func (s *Store) ArticleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.articles)
}

// UserCount は保存済みユーザーの件数を返す。
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// --- users ---

// UserRepo はUserRepositoryのインメモリ実装。
type UserRepo struct{ *Store }

func (r UserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r UserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r UserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r UserRepo) UpdatePassword(_ context.Context, id, passwordHash string, updatedAt time.Time) error {
	return r.update(id, func(u *model.User) { u.PasswordHash = passwordHash; u.UpdatedAt = updatedAt })
}

func (r UserRepo) UpdateProfileImage(_ context.Context, id, image string, updatedAt time.Time) error {
	return r.update(id, func(u *model.User) { u.ProfileImage = image; u.UpdatedAt = updatedAt })
}

func (r UserRepo) update(id string, fn func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return errUserNotFound
	}
	fn(u)
	return nil
}

// --- articles ---

// ArticleRepo はArticleRepositoryのインメモリ実装。
type ArticleRepo struct{ *Store }

func (r ArticleRepo) FindByTitle(_ context.Context, title string) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.findByTitleLocked(title), nil
}

func (r ArticleRepo) FindByTitleContentImage(_ context.Context, title, content, image string) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if a := r.findByTitleLocked(title); a != nil && a.Content == content && a.Image == image {
		return a, nil
	}
	return nil, nil
}

func (r ArticleRepo) InsertIfAbsent(_ context.Context, article *model.Article) (*model.Article, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, false, r.Err
	}
	if existing := r.findByTitleLocked(article.Title); existing != nil {
		return existing, false, nil
	}
	cp := *article
	r.articles[article.ID] = &cp
	out := cp
	return &out, true, nil
}

func (s *Store) findByTitleLocked(title string) *model.Article {
	for _, a := range s.articles {
		if a.Title == title {
			cp := *a
			return &cp
		}
	}
	return nil
}

// --- bookmarks ---

// BookmarkRepo はBookmarkRepositoryのインメモリ実装。
type BookmarkRepo struct{ *Store }

func (r BookmarkRepo) ListByUser(_ context.Context, userID string) ([]*model.BookmarkWithArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*model.BookmarkWithArticle
	for _, b := range r.bookmarks {
		if b.UserID != userID {
			continue
		}
		a := r.articles[b.ArticleID]
		out = append(out, &model.BookmarkWithArticle{ID: b.ID, Article: *a, CreatedAt: b.CreatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r BookmarkRepo) FindByUserAndTitle(_ context.Context, userID, title string) (*model.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, b := range r.bookmarks {
		if b.UserID == userID && r.articles[b.ArticleID].Title == title {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r BookmarkRepo) Create(_ context.Context, bookmark *model.Bookmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, b := range r.bookmarks {
		if b.UserID == bookmark.UserID && b.ArticleID == bookmark.ArticleID {
			return repository.ErrDuplicate
		}
	}
	cp := *bookmark
	r.bookmarks[bookmark.ID] = &cp
	return nil
}

func (r BookmarkRepo) DeleteByIDAndUser(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	b, ok := r.bookmarks[id]
	if !ok || b.UserID != userID {
		return false, nil
	}
	delete(r.bookmarks, id)
	return true, nil
}

// --- likes ---

// LikeRepo はLikeRepositoryのインメモリ実装。
type LikeRepo struct{ *Store }

func (r LikeRepo) FindByUserAndArticle(_ context.Context, userID, articleID string) (*model.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, l := range r.likes {
		if l.UserID == userID && l.ArticleID == articleID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r LikeRepo) Create(_ context.Context, like *model.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, l := range r.likes {
		if l.UserID == like.UserID && l.ArticleID == like.ArticleID {
			return repository.ErrDuplicate
		}
	}
	cp := *like
	r.likes[like.ID] = &cp
	return nil
}

func (r LikeRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	delete(r.likes, id)
	return nil
}

func (r LikeRepo) ListArticlesByUser(_ context.Context, userID string) ([]*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var likes []*model.Like
	for _, l := range r.likes {
		if l.UserID == userID {
			likes = append(likes, l)
		}
	}
	sort.SliceStable(likes, func(i, j int) bool { return likes[i].CreatedAt.After(likes[j].CreatedAt) })
	out := make([]*model.Article, 0, len(likes))
	for _, l := range likes {
		cp := *r.articles[l.ArticleID]
		out = append(out, &cp)
	}
	return out, nil
}

// --- reading history ---

// HistoryRepo はHistoryRepositoryのインメモリ実装。
type HistoryRepo struct{ *Store }

func (r HistoryRepo) Upsert(_ context.Context, entry *model.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, e := range r.history {
		if e.UserID == entry.UserID && e.Article.Title == entry.Article.Title {
			e.ReadAt = entry.ReadAt
			e.ExpiresAt = entry.ExpiresAt
			entry.ID = e.ID
			return nil
		}
	}
	cp := *entry
	r.history[entry.ID] = &cp
	return nil
}

func (r HistoryRepo) ListByUser(_ context.Context, userID string, readAfter time.Time) ([]*model.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*model.HistoryEntry
	for _, e := range r.history {
		if e.UserID == userID && e.ReadAt.After(readAfter) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReadAt.After(out[j].ReadAt) })
	return out, nil
}

// HistoryCount は全ユーザーの閲覧履歴件数を返す（期限切れを含む）。
func (s *Store) HistoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

var (
	_ repository.UserRepository     = UserRepo{}
	_ repository.ArticleRepository  = ArticleRepo{}
	_ repository.BookmarkRepository = BookmarkRepo{}
	_ repository.LikeRepository     = LikeRepo{}
	_ repository.HistoryRepository  = HistoryRepo{}
)
