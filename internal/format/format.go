package format

import (
	"strings"
	"time"
)

// FmtDate formats t in a locale-friendly long form. The zero time renders as "".
// Example: FmtDate(t, "ko") => "2025년 3월 1일"
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "ko":
		return t.Format("2006년 1월 2일")
	default:
		return t.Format("January 2, 2006")
	}
}

// ISODate formats t as YYYY-MM-DD for machine-readable attributes.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
