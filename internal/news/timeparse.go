package news

import (
	"strings"
	"time"
)

var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
}

// parsePublished は候補の中で最初に解釈できた日時を返す。
func parsePublished(candidates ...string) *time.Time {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		for _, layout := range publishedLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				utc := t.UTC()
				return &utc
			}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
