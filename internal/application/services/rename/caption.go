package rename

import (
	"html"
	"regexp"

	"github.com/dustin/go-humanize"
	"github.com/easayliu/tg-autorename/internal/shared/utils"
	"github.com/easayliu/tg-autorename/pkg/formatter"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// captionMarkup maps the markdown accepted in caption templates to Telegram HTML.
var captionMarkup = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("`([^`]+)`"), "<code>$1</code>"},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "<b>$1</b>"},
	{regexp.MustCompile(`__(.+?)__`), "<i>$1</i>"},
	{regexp.MustCompile(`--(.+?)--`), "<u>$1</u>"},
	{regexp.MustCompile(`~~(.+?)~~`), "<s>$1</s>"},
	{regexp.MustCompile(`\|\|(.+?)\|\|`), "<tg-spoiler>$1</tg-spoiler>"},
	{regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`), `<a href="$2">$1</a>`},
}

// captionFor builds the upload caption. A user template may use **bold**,
// __italic__, --underline--, ~~strike~~, ||spoiler||, `code` and
// [text](url); it is converted to HTML before {filename}, {filesize} and
// {duration} are filled in, so values are never read as markup. Without a
// template the renamed file name is sent in bold.
func captionFor(renderer *utils.TemplateRenderer, template, fileName string, size int64, durationSec int) (caption, parseMode string) {
	if template == "" {
		return "<b>" + html.EscapeString(fileName) + "</b>", tgbotapi.ModeHTML
	}
	if size < 0 {
		size = 0
	}
	return renderer.Render(captionHTML(template), map[string]string{
		"filename": html.EscapeString(fileName),
		"filesize": html.EscapeString(humanize.Bytes(uint64(size))),
		"duration": html.EscapeString(formatter.FormatClock(durationSec)),
	}), tgbotapi.ModeHTML
}

func captionHTML(template string) string {
	out := html.EscapeString(template)
	for _, m := range captionMarkup {
		out = m.re.ReplaceAllString(out, m.repl)
	}
	return out
}
