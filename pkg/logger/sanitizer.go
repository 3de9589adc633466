package logger

import (
	"regexp"
	"strings"
)

const maskedValue = "***MASKED***"

var sensitiveWords = map[string]bool{
	"token":         true,
	"password":      true,
	"passwd":        true,
	"pwd":           true,
	"secret":        true,
	"apikey":        true,
	"authorization": true,
}

// Telegram 接口地址里携带的 bot token，例如 bot123456:AAE...
var botTokenPattern = regexp.MustCompile(`bot(\d+):[A-Za-z0-9_-]{10,}`)

// MaskToken 脱敏token字符串
// 规则:
//   - 空字符串返回空
//   - 长度<8: 返回 "***"
//   - 长度>=8: 保留前4后4,中间用星号替换
func MaskToken(token string) string {
	if token == "" {
		return ""
	}

	length := len(token)
	if length < 8 {
		return "***"
	}
	return token[:4] + strings.Repeat("*", length-8) + token[length-4:]
}

// IsSensitiveKey 判断键名是否为敏感字段
// 按分隔符拆词匹配，避免 author 之类的普通字段被误判
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	if strings.Contains(keyLower, "api_key") || strings.Contains(keyLower, "api-key") {
		return true
	}

	words := strings.FieldsFunc(keyLower, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	for _, w := range words {
		if sensitiveWords[w] {
			return true
		}
	}
	return false
}

// SanitizeValue 根据键名脱敏对应的值
func SanitizeValue(key string, value interface{}) interface{} {
	if IsSensitiveKey(key) {
		if strVal, ok := value.(string); ok {
			return MaskToken(strVal)
		}
		return maskedValue
	}

	switch v := value.(type) {
	case string:
		return SanitizeString(v)
	case error:
		if msg := v.Error(); botTokenPattern.MatchString(msg) {
			return SanitizeString(msg)
		}
	}
	return value
}

// SanitizeArgs 批量脱敏slog日志参数
// slog使用键值对格式: key1, value1, key2, value2, ...
func SanitizeArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	result := make([]any, len(args))
	for i := 0; i < len(args); i += 2 {
		result[i] = args[i]
		if i+1 >= len(args) {
			break
		}
		if key, ok := args[i].(string); ok {
			result[i+1] = SanitizeValue(key, args[i+1])
		} else {
			result[i+1] = args[i+1]
		}
	}
	return result
}

// SanitizeString 遮盖字符串中内嵌的 bot token
func SanitizeString(s string) string {
	if !strings.Contains(s, "bot") {
		return s
	}
	return botTokenPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := botTokenPattern.FindStringSubmatch(m)
		return "bot" + sub[1] + ":" + maskedValue
	})
}
