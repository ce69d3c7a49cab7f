package respond

import (
	"regexp"
)

var (
	// DSN内のパスワード
	dbPasswordPattern = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)

	// key=value 形式のDSN (lib/pq)
	kvPasswordPattern = regexp.MustCompile(`(?i)(password=)\S+`)

	// セッショントークン (JWT)
	jwtPattern = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)

	// アクティベーショントークン
	activationTokenPattern = regexp.MustCompile(`(token=)[^&\s]+`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = jwtPattern.ReplaceAllString(msg, "eyJ****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = kvPasswordPattern.ReplaceAllString(msg, "${1}****")
	msg = activationTokenPattern.ReplaceAllString(msg, "${1}****")
	return msg
}
