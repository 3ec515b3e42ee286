// Package privacy keeps patient and client identifiers out of logs and traces.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
)

// AnonymizeIP truncates an IP address to its network prefix: /24 for IPv4,
// /48 for IPv6. Returns "unknown" for empty input and "invalid" when the
// value does not parse.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// HashIdentifier returns a short, stable, non-reversible token for an
// identifier such as a patient id. Empty input stays empty.
func HashIdentifier(v string) string {
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:8])
}
