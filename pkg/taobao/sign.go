package taobao

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
)

// Sign computes the provider-mandated MD5 signature: parameters sorted
// lexicographically by key, concatenated as key+value with the shared
// secret as both prefix and suffix, hashed and hex-uppercased.
// The upstream router rejects any request whose signature deviates.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(secret)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	b.WriteString(secret)

	sum := md5.Sum([]byte(b.String()))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}
