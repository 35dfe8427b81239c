// Package i18n はAPIレスポンスのメッセージをリクエストごとの言語で返す。
// カタログは起動時に構築した後は変更しない。
package i18n

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/hitoshi/newsman/internal/model"
)

// Message は1つのメッセージキーに対する翻訳。
// Textに%sを含む場合、APIErrorのDetailsの値で置換する。
type Message struct {
	Text   string
	Action string
	Param  string // Textに差し込むDetailsのキー
}

// Catalog は言語ごとのメッセージ集合。基準言語は英語で、
// 基準言語のメッセージはmodel側の既定文言をそのまま使う。
type Catalog struct {
	tags     []language.Tag
	messages map[language.Tag]map[string]Message
	matcher  language.Matcher
}

// NewCatalog はカタログを生成する。tagsの先頭が既定言語になる。
// setsはコピーして保持するため、呼び出し後に変更しても影響しない。
func NewCatalog(tags []language.Tag, sets map[language.Tag]map[string]Message) *Catalog {
	messages := make(map[language.Tag]map[string]Message, len(sets))
	for tag, set := range sets {
		copied := make(map[string]Message, len(set))
		for k, v := range set {
			copied[k] = v
		}
		messages[tag] = copied
	}
	t := make([]language.Tag, len(tags))
	copy(t, tags)
	return &Catalog{tags: t, messages: messages, matcher: language.NewMatcher(t)}
}

// DefaultCatalog は英語とインドネシア語のカタログを返す。
func DefaultCatalog() *Catalog {
	return NewCatalog(
		[]language.Tag{language.English, language.Indonesian},
		map[language.Tag]map[string]Message{language.Indonesian: indonesian},
	)
}

// Match はAccept-Languageヘッダーの値に最も合う言語のLocalizerを返す。
func (c *Catalog) Match(acceptLanguage string) *Localizer {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return c.localizer(0)
	}
	_, idx, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		idx = 0
	}
	return c.localizer(idx)
}

// ForTag は指定言語のLocalizerを返す。未対応の言語は既定言語になる。
func (c *Catalog) ForTag(tag language.Tag) *Localizer {
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		idx = 0
	}
	return c.localizer(idx)
}

func (c *Catalog) localizer(idx int) *Localizer {
	if len(c.tags) == 0 {
		return &Localizer{tag: language.English}
	}
	tag := c.tags[idx]
	return &Localizer{tag: tag, messages: c.messages[tag]}
}

// Localizer は1つの言語に固定されたメッセージ参照。
type Localizer struct {
	tag      language.Tag
	messages map[string]Message
}

// Tag はLocalizerの言語を返す。
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Error はAPIErrorのMessageとActionを翻訳したコピーを返す。
// 翻訳が無い場合は元の文言のまま返す。
func (l *Localizer) Error(e *model.APIError) *model.APIError {
	if l == nil || e == nil {
		return e
	}
	m, ok := l.messages[e.Code]
	if !ok {
		return e
	}
	out := *e
	out.Message = l.format(m, e.Details)
	if m.Action != "" {
		out.Action = m.Action
	}
	return &out
}

// Text はキーに対応する文言を返す。翻訳が無い場合はfallbackを返す。
func (l *Localizer) Text(key, fallback string) string {
	if l == nil {
		return fallback
	}
	if m, ok := l.messages[key]; ok && m.Text != "" {
		return m.Text
	}
	return fallback
}

func (l *Localizer) format(m Message, details map[string]string) string {
	if m.Param == "" || !strings.Contains(m.Text, "%s") {
		return m.Text
	}
	return fmt.Sprintf(m.Text, details[m.Param])
}

type ctxKey struct{}

// WithLocalizer はLocalizerをコンテキストに格納する。
func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext はコンテキストのLocalizerを返す。未設定の場合はnilを返し、
// nilのLocalizerは元の文言をそのまま返す。
func FromContext(ctx context.Context) *Localizer {
	l, _ := ctx.Value(ctxKey{}).(*Localizer)
	return l
}
