package core

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var mentionRe = regexp.MustCompile(`@([a-zA-Z][a-zA-Z0-9]*(?:[-\.][a-zA-Z0-9]+)*)`)

// ExtractMentions returns mention targets without the @ prefix, lowercased
// and deduplicated. Email-like text ("a@b.c") is not a mention.
func ExtractMentions(body string) []string {
	matches := mentionRe.FindAllStringSubmatchIndex(body, -1)
	seen := map[string]struct{}{}
	mentions := make([]string, 0, len(matches))

	for _, match := range matches {
		if len(match) < 4 {
			continue
		}
		start := match[0]
		if start > 0 {
			prev, _ := utf8.DecodeLastRuneInString(body[:start])
			if isAlphaNum(prev) {
				continue
			}
		}
		name := strings.ToLower(body[match[2]:match[3]])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		mentions = append(mentions, name)
	}
	return mentions
}

// Mentions reports whether body mentions username directly or via @all.
func Mentions(body, username string) bool {
	username = strings.ToLower(username)
	for _, m := range ExtractMentions(body) {
		if m == "all" || (username != "" && m == username) {
			return true
		}
	}
	return false
}

func isAlphaNum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
