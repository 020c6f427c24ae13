package payment

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// VerifyIPNSignature checks the verify_sign of an SSLCommerz IPN post.
// Per SSLCommerz documentation: take the fields named in verify_key, add
// store_passwd = md5(store password), sort the keys, build a query string
// and compare its MD5 against verify_sign.
func VerifyIPNSignature(storePassword string, form map[string]string) bool {
	verifySign := form["verify_sign"]
	verifyKey := form["verify_key"]
	if verifySign == "" || verifyKey == "" {
		return false
	}

	keys := strings.Split(verifyKey, ",")
	pairs := make(map[string]string, len(keys)+1)
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		pairs[k] = form[k]
	}
	passwdHash := md5.Sum([]byte(storePassword))
	pairs["store_passwd"] = hex.EncodeToString(passwdHash[:])

	sorted := make([]string, 0, len(pairs))
	for k := range pairs {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var b strings.Builder
	for i, k := range sorted {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
	}

	sum := md5.Sum([]byte(b.String()))
	return strings.EqualFold(hex.EncodeToString(sum[:]), verifySign)
}
