package env

import (
	"net/url"
	"regexp"
	"strings"
)

// RedactSecret keeps the first and last four bytes of secrets
// longer than eight bytes and stars everything else.
func RedactSecret(secret string) string {
	n := len(secret)
	if n <= 8 {
		return strings.Repeat("*", n)
	}
	var b strings.Builder
	b.Grow(n)
	b.WriteString(secret[:4])
	b.WriteString(strings.Repeat("*", n-8))
	b.WriteString(secret[n-4:])
	return b.String()
}

var keywordPassword = regexp.MustCompile(`(?i)\bpassword=('[^']*'|\S+)`)

// RedactURL masks the password of a connection string. Both URL
// DSNs (postgres://u:p@host/db, amqp://u:p@host/) and libpq
// keyword DSNs (host=db password=p) are understood.
func RedactURL(dsn string) string {
	if !strings.Contains(dsn, "://") {
		return keywordPassword.ReplaceAllStringFunc(dsn, func(m string) string {
			k, v, _ := strings.Cut(m, "=")
			return k + "=" + RedactSecret(strings.Trim(v, "'"))
		})
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if pw, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), RedactSecret(pw))
	}
	return u.String()
}
