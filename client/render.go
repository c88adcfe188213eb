package client

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/magbay/LAN-Chat/domain/chat"
)

var entryTemplate = template.Must(template.New("entry").Parse(
	`<li class="{{if .Mine}}me{{else}}other{{end}}">` +
		`<div class="meta">{{.Message.Nickname}} • {{.Time}}</div><div>` +
		`{{range .Spans}}` +
		`{{if eq .Kind.String "image"}}<img src="{{.URL}}" alt="image" style="max-width:200px;max-height:200px;display:block;margin-bottom:4px;"><a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.URL}}</a>` +
		`{{else if eq .Kind.String "link"}}<a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Text}}</a>` +
		`{{else}}{{.Text}}{{end}}` +
		`{{end}}</div></li>`,
))

// RenderHTML renders an entry as an HTML list item. Plain text is escaped;
// image references become an inline image followed by a link.
func RenderHTML(e Entry) (template.HTML, error) {
	var buf bytes.Buffer
	err := entryTemplate.Execute(&buf, struct {
		Entry
		Time string
	}{e, e.Message.Timestamp.Local().Format(time.Kitchen)})
	if err != nil {
		return "", fmt.Errorf("render entry: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// RenderText renders an entry as one terminal line.
func RenderText(e Entry) string {
	var b strings.Builder
	b.WriteString(e.Message.Timestamp.Local().Format("15:04:05"))
	b.WriteString(" ")
	if e.Mine {
		b.WriteString("* ")
	}
	b.WriteString(e.Message.Nickname)
	b.WriteString(": ")
	for _, span := range e.Spans {
		switch span.Kind {
		case chat.SpanImageRef:
			fmt.Fprintf(&b, "[image %s]", span.URL)
		case chat.SpanLink:
			fmt.Fprintf(&b, "<%s>", span.URL)
		default:
			b.WriteString(span.Text)
		}
	}
	return b.String()
}

// StatusLine summarizes the roster and typing indicator.
func (v *View) StatusLine() string {
	line := fmt.Sprintf("%d online: %s", v.Count, strings.Join(v.Roster, ", "))
	if v.Typing != "" {
		line += " | " + v.Typing
	}
	return line
}
