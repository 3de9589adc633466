package safety

import (
	"context"
	"strings"
	"unicode"

	"github.com/easayliu/tg-autorename/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultBlockedKeywords 默认屏蔽词
var DefaultBlockedKeywords = []string{
	"porn", "porno", "xxx", "nsfw", "hentai", "onlyfans", "sex", "nude", "nudes", "18+",
}

// KeywordScreener 基于关键词的内容检查
// 文件名和消息说明先做 NFKD 分解、去掉组合符号并大小写折叠，再按整词匹配
type KeywordScreener struct {
	enabled  bool
	keywords []string
}

// NewKeywordScreener 创建关键词检查器，keywords 为空时使用默认列表
func NewKeywordScreener(enabled bool, keywords []string) *KeywordScreener {
	if len(keywords) == 0 {
		keywords = DefaultBlockedKeywords
	}
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if n := normalize(kw); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &KeywordScreener{enabled: enabled, keywords: normalized}
}

// Screen 返回 true 表示拒绝
func (s *KeywordScreener) Screen(_ context.Context, fileName string, msg *tgbotapi.Message) bool {
	if !s.enabled {
		return false
	}
	text := fileName
	if msg != nil && msg.Caption != "" {
		text += " " + msg.Caption
	}
	if kw, ok := s.match(text); ok {
		logger.Warn("Content screening rejected file", "file", fileName, "keyword", kw)
		return true
	}
	return false
}

func (s *KeywordScreener) match(text string) (string, bool) {
	padded := " " + normalize(text) + " "
	for _, kw := range s.keywords {
		if strings.Contains(padded, " "+kw+" ") {
			return kw, true
		}
	}
	return "", false
}

// normalize 折叠大小写与变音符号，非字母数字字符（+ 除外）统一视为空格
func normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), cases.Fold())
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = strings.ToLower(s)
	}
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+'
	})
	return strings.Join(fields, " ")
}
