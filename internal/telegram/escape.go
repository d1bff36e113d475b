// internal/telegram/escape.go
package telegram

import "strings"

// markdownV2Specials is the full character set the provider's MarkdownV2
// parser treats as control syntax. Every occurrence in free text must be
// backslash-escaped individually.
const markdownV2Specials = "_*[]()~`>#+-=|{}.!"

var markdownV2Escaper = buildEscaper()

func buildEscaper() *strings.Replacer {
	pairs := make([]string, 0, len(markdownV2Specials)*2)
	for _, ch := range markdownV2Specials {
		pairs = append(pairs, string(ch), `\`+string(ch))
	}
	return strings.NewReplacer(pairs...)
}

// EscapeMarkdownV2 escapes every special character in a free-text field.
func EscapeMarkdownV2(text string) string {
	if text == "" {
		return ""
	}
	return markdownV2Escaper.Replace(text)
}

// EscapeURL escapes only the closing parenthesis, the single character that
// can terminate an inline-link target early.
func EscapeURL(rawURL string) string {
	return strings.ReplaceAll(rawURL, ")", `\)`)
}

// StripMarkdownV2 converts a rich body to plain text for the fallback
// encoding: escape markers are dropped and bold/italic/code/link markup is
// unwrapped rather than re-escaped.
func StripMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch == '\\' && i+1 < len(runes) && strings.ContainsRune(markdownV2Specials, runes[i+1]) {
			b.WriteRune(runes[i+1])
			i++
			continue
		}
		switch ch {
		case '*', '_', '`':
			// Markup delimiters carry no content.
		case '[':
			// Inline link: keep the label, drop the target.
			label, rest, ok := splitLink(runes[i:])
			if ok {
				b.WriteString(StripMarkdownV2(label))
				i += len(runes[i:]) - len(rest) - 1
			} else {
				b.WriteRune(ch)
			}
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// splitLink parses "[label](target)rest" starting at the opening bracket
// and returns the label and the remainder after the closing parenthesis.
func splitLink(runes []rune) (label string, rest []rune, ok bool) {
	closeLabel := -1
	for i := 1; i < len(runes); i++ {
		if runes[i] == ']' && runes[i-1] != '\\' {
			closeLabel = i
			break
		}
	}
	if closeLabel < 0 || closeLabel+1 >= len(runes) || runes[closeLabel+1] != '(' {
		return "", nil, false
	}
	closeTarget := -1
	for i := closeLabel + 2; i < len(runes); i++ {
		if runes[i] == ')' && runes[i-1] != '\\' {
			closeTarget = i
			break
		}
	}
	if closeTarget < 0 {
		return "", nil, false
	}
	return string(runes[1:closeLabel]), runes[closeTarget+1:], true
}
