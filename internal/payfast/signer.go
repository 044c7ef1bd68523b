package payfast

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Canonicalize builds the signature base string for a field set: keys with
// empty values are dropped, remaining keys are sorted lexicographically by
// raw key name, values are URL-encoded with the gateway's +-for-space
// convention, pairs are joined as key=value with &, and a configured
// passphrase is appended as a final &passphrase= pair.
//
// The same bytes must come out of the outbound-signing path and the
// inbound-verification path; the whole security property rests on that.
func Canonicalize(fields map[string]string, passphrase string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
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
		b.WriteString(encode(fields[k]))
	}
	if passphrase != "" {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString("passphrase=")
		b.WriteString(encode(passphrase))
	}
	return b.String()
}

// Sign computes the md5 hex digest of the canonical base string. The gateway
// uses a plain content hash, not an HMAC; the only secret is the optional
// passphrase baked into the string itself.
func Sign(fields map[string]string, passphrase string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(Canonicalize(fields, passphrase))))
}

// encode applies form-style percent-encoding. url.QueryEscape encodes a
// space as "+", which is exactly the convention the gateway signs with.
func encode(v string) string {
	return url.QueryEscape(v)
}
