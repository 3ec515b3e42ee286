package request

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"carebridge/pkg/requestcontext"
)

const (
	// MaxForwardedHeaderLength bounds X-Forwarded-For / X-Real-IP values.
	MaxForwardedHeaderLength = 500
	// MaxDeviceIDLength bounds the X-Device-ID header.
	MaxDeviceIDLength = 128

	deviceIDHeader = "X-Device-ID"
)

// ClientMetadata resolves the client IP and User-Agent (and an optional
// X-Device-ID) into the request context. Forwarding headers are honoured
// only when the direct peer falls inside one of trustedProxies.
func ClientMetadata(trustedProxies []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustedProxies)
			ctx := requestcontext.WithClientMetadata(r.Context(), ip, r.Header.Get("User-Agent"))
			if dev := strings.TrimSpace(r.Header.Get(deviceIDHeader)); dev != "" && len(dev) <= MaxDeviceIDLength && requestIDPattern.MatchString(dev) {
				ctx = requestcontext.WithDeviceID(ctx, dev)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := peerAddr(r.RemoteAddr)
	if !peer.IsValid() {
		return "unknown"
	}
	if !isTrusted(peer, trusted) {
		return peer.String()
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && len(xff) <= MaxForwardedHeaderLength {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
		return peer.String()
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && len(xri) <= MaxForwardedHeaderLength {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.String()
		}
	}
	return peer.String()
}

func peerAddr(remoteAddr string) netip.Addr {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
