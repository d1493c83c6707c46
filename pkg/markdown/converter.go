// Package markdown renders the bot's stored message texts (the /start and
// /help bodies, the announcement warning) to the HTML dialect Telegram
// accepts. The texts keep Telegram markdown habits, so backslash-escaped
// punctuation must come out as the bare character and only the handful of
// inline tags Telegram parses may survive.
package markdown

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// supportedTags is the whitelist of Telegram message entities. Anything
// else is stripped while its text is kept.
var supportedTags = map[string]bool{
	"b":    true,
	"i":    true,
	"u":    true,
	"s":    true,
	"code": true,
	"pre":  true,
	"a":    true,
}

var (
	codeBlockRe    = regexp.MustCompile(`(?s)<pre><code(?: class="[^"]*")?>(.*?)</code></pre>`)
	paragraphRe    = regexp.MustCompile(`(?s)<p>(.*?)</p>`)
	headingOpenRe  = regexp.MustCompile(`<h[1-6][^>]*>`)
	headingCloseRe = regexp.MustCompile(`</h[1-6]>`)
	anyTagRe       = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)(?:\s[^>]*)?/?>`)
	blankRunRe     = regexp.MustCompile(`\n{3,}`)
)

// tagRenames maps blackfriday's output onto Telegram's tag set and turns
// list items into bullet lines.
var tagRenames = strings.NewReplacer(
	"<strong>", "<b>", "</strong>", "</b>",
	"<em>", "<i>", "</em>", "</i>",
	"<del>", "<s>", "</del>", "</s>",
	"<li>", "• ", "</li>", "\n",
	"<br />", "\n", "<br/>", "\n", "<br>", "\n",
)

// ToTelegramHTML renders a stored message text to Telegram-compatible
// HTML. Headings have no Telegram entity; they come out bold.
func ToTelegramHTML(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	html := string(blackfriday.Run([]byte(md),
		blackfriday.WithExtensions(blackfriday.CommonExtensions)))

	html = codeBlockRe.ReplaceAllString(html, "<pre>$1</pre>")
	html = paragraphRe.ReplaceAllString(html, "$1\n")
	html = headingOpenRe.ReplaceAllString(html, "<b>")
	html = headingCloseRe.ReplaceAllString(html, "</b>\n")
	html = tagRenames.Replace(html)
	html = stripUnsupported(html)
	html = blankRunRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}

func stripUnsupported(html string) string {
	return anyTagRe.ReplaceAllStringFunc(html, func(tag string) string {
		name := strings.ToLower(anyTagRe.FindStringSubmatch(tag)[1])
		if supportedTags[name] {
			return tag
		}
		return ""
	})
}
