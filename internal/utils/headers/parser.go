package headers

import (
	"fmt"
	"net/textproto"
	"strings"
)

// ParseHeaders converts "Key: Value" strings into a map keyed by canonical
// header name. A later entry for the same key replaces an earlier one.
func ParseHeaders(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		name, value, ok := strings.Cut(hdr, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("invalid header %q: expected \"Name: value\"", hdr)
		}
		m[textproto.CanonicalMIMEHeaderKey(name)] = strings.TrimSpace(value)
	}
	return m, nil
}
