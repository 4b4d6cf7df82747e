package chat

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adamavenir/tern/internal/types"
	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
)

const (
	chromaStyleName = "dracula"
	minDetailWidth  = 20
)

// messageDetail is the modal body for one message: metadata, the wrapped
// body with highlighted code fences, reactions and attachments.
func messageDetail(msg types.Message, cols int) string {
	width := cols - 8
	if width < minDetailWidth {
		width = minDetailWidth
	}

	var b strings.Builder
	posted := time.Unix(msg.TS, 0)
	fmt.Fprintf(&b, "%s · %s (%s)\n", msg.ID, posted.Format("2006-01-02 15:04"), humanize.Time(posted))
	if msg.EditedAt != nil {
		fmt.Fprintf(&b, "edited %s\n", humanize.Time(time.Unix(*msg.EditedAt, 0)))
	}
	if msg.ReplyTo != nil {
		fmt.Fprintf(&b, "reply to %s\n", *msg.ReplyTo)
	}
	b.WriteString("\n")
	b.WriteString(renderBody(msg.Body, width))

	if len(msg.Reactions) > 0 {
		b.WriteString("\n\n")
		for _, r := range msg.Reactions {
			fmt.Fprintf(&b, "%s %s\n", r.Emoji, strings.Join(r.Users, ", "))
		}
	}
	if len(msg.Attachments) > 0 {
		b.WriteString("\n")
		for _, att := range msg.Attachments {
			fmt.Fprintf(&b, "📎 %s  %s\n", att.Name, att.Path)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderBody wraps prose to width and highlights fenced code blocks, which
// are left unwrapped.
func renderBody(body string, width int) string {
	lines := strings.Split(body, "\n")
	var out, prose []string
	flush := func() {
		if len(prose) > 0 {
			out = append(out, wordwrap.String(strings.Join(prose, "\n"), width))
			prose = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		fence, lang, ok := openingFence(lines[i])
		if !ok {
			prose = append(prose, lines[i])
			continue
		}
		end := i + 1
		for end < len(lines) && !closesFence(lines[end], fence) {
			end++
		}
		if end == len(lines) {
			prose = append(prose, lines[i])
			continue
		}
		flush()
		out = append(out, lines[i], highlight(strings.Join(lines[i+1:end], "\n"), lang), lines[end])
		i = end
	}
	flush()
	return strings.Join(out, "\n")
}

// openingFence recognises ``` or ~~~ (three or more) with an optional
// language word.
func openingFence(line string) (fence, lang string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 3 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return "", "", false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == trimmed[0] {
		n++
	}
	if n < 3 {
		return "", "", false
	}
	if fields := strings.Fields(trimmed[n:]); len(fields) > 0 {
		lang = fields[0]
	}
	return trimmed[:n], lang, true
}

func closesFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= len(fence) && strings.Trim(trimmed, fence[:1]) == ""
}

func highlight(code, lang string) string {
	if code == "" || os.Getenv("NO_COLOR") != "" {
		return code
	}
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(strings.ToLower(lang))
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code
	}
	style := styles.Get(chromaStyleName)
	if style == nil {
		style = styles.Fallback
	}
	var buf bytes.Buffer
	if err := formatters.TTY256.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
