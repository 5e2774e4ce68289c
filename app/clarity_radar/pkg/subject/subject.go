// Package subject 负责把用户输入的网址规整为缓存键，并给出区域池提示。
package subject

import (
	"errors"
	"strings"
	"unicode"
)

// DefaultRegion 无法拆出区域时使用的池键
const DefaultRegion = "default"

const maxSubjectLen = 253

var (
	ErrEmptySubject   = errors.New("subject is empty")
	ErrInvalidSubject = errors.New("subject is malformed")
)

// Normalize 将任意输入规整为稳定的缓存键。
// 小写、去掉协议与 www. 前缀、截断路径，反复执行直到结果不再变化，保证幂等。
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	for {
		next := normalizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = strings.TrimSpace(s)
	for _, scheme := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, scheme)
	}
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Validate 在任何 I/O 之前拒绝无法使用的主体
func Validate(normalized string) error {
	if normalized == "" {
		return ErrEmptySubject
	}
	if len(normalized) > maxSubjectLen {
		return ErrInvalidSubject
	}
	for _, r := range normalized {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return ErrInvalidSubject
		}
	}
	return nil
}

// RegionHint 尽力从域名首段推断区域键，例如 "dallas-toyota.com" -> "dallas-toyota"。
// 结果只是池化提示，不代表真实地理位置。
func RegionHint(normalized string) (string, bool) {
	if normalized == "" {
		return "", false
	}
	label, _, _ := strings.Cut(normalized, ".")
	parts := strings.Split(label, "-")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return DefaultRegion, true
	}
	return parts[0] + "-" + parts[1], true
}
