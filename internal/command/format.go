package command

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adamavenir/tern/internal/types"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	idColor     = color.New(color.Faint)
	authorColor = color.New(color.Bold, color.FgCyan)
	metaColor   = color.New(color.Faint, color.Italic)
	headColor   = color.New(color.Bold, color.Underline)
)

func formatMessage(msg types.Message) string {
	var b strings.Builder
	b.WriteString(idColor.Sprintf("[%s]", msg.ID))
	b.WriteString(" ")
	b.WriteString(authorColor.Sprintf("@%s", msg.Author))
	b.WriteString(metaColor.Sprintf(" %s", humanize.Time(time.Unix(msg.TS, 0))))
	if msg.Edited() {
		b.WriteString(metaColor.Sprint(" (edited)"))
	}
	b.WriteString(": ")
	b.WriteString(msg.Body)
	if msg.ReplyTo != nil {
		b.WriteString(metaColor.Sprintf("\n  ↪ reply to %s", *msg.ReplyTo))
	}
	for _, r := range msg.Reactions {
		fmt.Fprintf(&b, "\n  %s %s", r.Emoji, strings.Join(r.Users, ", "))
	}
	for _, att := range msg.Attachments {
		fmt.Fprintf(&b, "\n  📎 %s", att.Name)
	}
	return b.String()
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
