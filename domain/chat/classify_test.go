package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []ClassifiedSpan
	}{
		{
			name: "image url after text",
			text: "see http://x/a.png",
			want: []ClassifiedSpan{PlainText("see "), ImageRef("http://x/a.png")},
		},
		{
			name: "generic link without image",
			text: "visit http://x/page",
			want: []ClassifiedSpan{PlainText("visit "), Link("http://x/page", "http://x/page")},
		},
		{
			name: "plain text only",
			text: "plain text",
			want: []ClassifiedSpan{PlainText("plain text")},
		},
		{
			name: "empty text",
			text: "",
			want: []ClassifiedSpan{},
		},
		{
			name: "uppercase extension with query string",
			text: "https://cdn.example.com/img/Cat.JPG?w=200&h=100 nice",
			want: []ClassifiedSpan{
				ImageRef("https://cdn.example.com/img/Cat.JPG?w=200&h=100"),
				PlainText(" nice"),
			},
		},
		{
			name: "uploaded image path",
			text: "/uploads/3f1c-cat.webp",
			want: []ClassifiedSpan{ImageRef("/uploads/3f1c-cat.webp")},
		},
		{
			name: "two images with text between",
			text: "a http://h/1.gif b /uploads/2.png c",
			want: []ClassifiedSpan{
				PlainText("a "),
				ImageRef("http://h/1.gif"),
				PlainText(" b "),
				ImageRef("/uploads/2.png"),
				PlainText(" c"),
			},
		},
		{
			name: "link detection skipped once an image matched",
			text: "http://x/page and http://x/a.png",
			want: []ClassifiedSpan{
				PlainText("http://x/page and "),
				ImageRef("http://x/a.png"),
			},
		},
		{
			name: "several links",
			text: "http://a.io/x?q=1 or https://b.io/y",
			want: []ClassifiedSpan{
				Link("http://a.io/x?q=1", "http://a.io/x?q=1"),
				PlainText(" or "),
				Link("https://b.io/y", "https://b.io/y"),
			},
		},
		{
			name: "host without path is not a link",
			text: "go to http://example.com now",
			want: []ClassifiedSpan{PlainText("go to http://example.com now")},
		},
		{
			name: "markup stays literal text",
			text: "<script>alert(1)</script>",
			want: []ClassifiedSpan{PlainText("<script>alert(1)</script>")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_IsDeterministic(t *testing.T) {
	text := "look /uploads/a.png and http://x/b.jpeg"
	assert.Equal(t, Classify(text), Classify(text))
}

func TestClassify_SpansRebuildText(t *testing.T) {
	text := "one http://x/a.png two http://y/b.gif?x=1 three"
	var rebuilt string
	for _, span := range Classify(text) {
		if span.Kind == SpanPlainText {
			rebuilt += span.Text
		} else {
			rebuilt += span.URL
		}
	}
	assert.Equal(t, text, rebuilt)
}

func TestClassifiedSpan_JSON(t *testing.T) {
	data, err := json.Marshal(Link("http://x/p", "http://x/p"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"link","text":"http://x/p","url":"http://x/p"}`, string(data))
}
