package chat

import (
	"fmt"
	"regexp"
)

// UploadPathPrefix is the path under which uploaded images are served.
const UploadPathPrefix = "/uploads/"

// SpanKind tags a ClassifiedSpan.
type SpanKind int

const (
	SpanPlainText SpanKind = iota
	SpanLink
	SpanImageRef
)

func (k SpanKind) String() string {
	switch k {
	case SpanPlainText:
		return "text"
	case SpanLink:
		return "link"
	case SpanImageRef:
		return "image"
	default:
		return fmt.Sprintf("SpanKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k SpanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ClassifiedSpan is one typed fragment of message text.
// Text holds the literal text for PlainText and the display text for Link.
// URL is set for Link and ImageRef.
type ClassifiedSpan struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text,omitempty"`
	URL  string   `json:"url,omitempty"`
}

// PlainText returns a literal text span.
func PlainText(text string) ClassifiedSpan {
	return ClassifiedSpan{Kind: SpanPlainText, Text: text}
}

// Link returns a hyperlink span.
func Link(url, displayText string) ClassifiedSpan {
	return ClassifiedSpan{Kind: SpanLink, Text: displayText, URL: url}
}

// ImageRef returns an inline image span.
func ImageRef(url string) ClassifiedSpan {
	return ClassifiedSpan{Kind: SpanImageRef, URL: url}
}

var (
	imageRefPattern = regexp.MustCompile(
		`(?i)(?:https?://[\w.-]+/[\w\-./%]+\.(?:png|jpg|jpeg|gif|webp)|` +
			regexp.QuoteMeta(UploadPathPrefix) + `[\w\-./%]+\.(?:png|jpg|jpeg|gif|webp))(?:\?[^\s]*)?`,
	)
	linkPattern = regexp.MustCompile(`(?i)https?://[\w.-]+/[\w\-./%?=&]+`)
)

// Classify splits message text into plain text, link and image spans.
//
// Image references are found first. Generic links are only detected when the
// text holds no image reference at all.
func Classify(text string) []ClassifiedSpan {
	if matches := imageRefPattern.FindAllStringIndex(text, -1); len(matches) > 0 {
		return split(text, matches, ImageRef)
	}
	return split(text, linkPattern.FindAllStringIndex(text, -1), func(url string) ClassifiedSpan {
		return Link(url, url)
	})
}

func split(text string, matches [][]int, wrap func(string) ClassifiedSpan) []ClassifiedSpan {
	spans := make([]ClassifiedSpan, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			spans = append(spans, PlainText(text[last:m[0]]))
		}
		spans = append(spans, wrap(text[m[0]:m[1]]))
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, PlainText(text[last:]))
	}
	return spans
}
