package usage

import (
	"crypto/md5"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// ClientID はリクエスト元の IP と User-Agent から匿名のクライアントIDを作ります。
// IP は X-Forwarded-For の先頭、なければ RemoteAddr を使うのだ。
func ClientID(r *http.Request) string {
	ip := ""
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip = strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if ip == "" {
		ip = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}
	sum := md5.Sum([]byte(ip + "_" + r.UserAgent()))
	return hex.EncodeToString(sum[:])
}
