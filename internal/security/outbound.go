// Package security は外部ニュースAPIへの通信と取得テキストの無害化を扱う。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// 外部へのリクエストで許可するスキームとポート。
var (
	outboundSchemes = []string{"http", "https"}
	outboundPorts   = []int{80, 443}
)

// internalPrefixes は設定ファイルで指定されたエンドポイントとして拒否するアドレス範囲。
var internalPrefixes = mustPrefixes(
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16", // クラウドのメタデータIPを含む
	"172.16.0.0/12",
	"192.168.0.0/16",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
)

func mustPrefixes(cidrs ...string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		out = append(out, netip.MustParsePrefix(c))
	}
	return out
}

// OutboundGuard はニュースプロバイダへのHTTP通信を内部ネットワークから隔離する。
type OutboundGuard struct{}

// NewOutboundGuard はOutboundGuardを生成する。
func NewOutboundGuard() *OutboundGuard {
	return &OutboundGuard{}
}

// NewClient はsafeurlでラップしたHTTPクライアントを返す。
// 接続時にDNS解決後のIPアドレスを検証するため、
// ホスト名が内部アドレスに解決される場合も接続できない。
func (g *OutboundGuard) NewClient(timeout time.Duration) *http.Client {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(outboundSchemes...).
		SetAllowedPorts(outboundPorts...).
		Build()
	return safeurl.Client(cfg).Client
}

// ValidateEndpoint はプロバイダカタログのエンドポイントURLを静的に検証する。
// DNS解決は行わない。
func (g *OutboundGuard) ValidateEndpoint(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("endpoint is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("endpoint scheme %q is not allowed", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("endpoint has no host: %s", rawURL)
	}
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return fmt.Errorf("endpoint host %q is not allowed", host)
	}

	if ip := net.ParseIP(host); ip != nil {
		addr, _ := netip.AddrFromSlice(ip)
		addr = addr.Unmap()
		for _, p := range internalPrefixes {
			if p.Contains(addr) {
				return fmt.Errorf("endpoint address %s is internal", addr)
			}
		}
	}
	return nil
}
