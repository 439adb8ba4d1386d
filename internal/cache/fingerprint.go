package cache

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint derives a cache key from query parameters. Keys are sorted and
// empty values dropped before hashing, so two logically identical queries
// produce the same fingerprint regardless of parameter order or absent
// defaults. Callers normalize default values before passing them in.
func Fingerprint(namespace string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s%x", namespace, sum[:16])
}
