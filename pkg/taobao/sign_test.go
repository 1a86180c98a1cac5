package taobao

import (
	"crypto/md5"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignOrdersKeysLexicographically(t *testing.T) {
	params := map[string]string{
		"method":  "taobao.item.get",
		"app_key": "12345",
		"v":       "2.0",
	}
	secret := "topsecret"

	// Expected concatenation: secret + app_key12345 + methodtaobao.item.get + v2.0 + secret
	expectedRaw := secret + "app_key12345" + "methodtaobao.item.get" + "v2.0" + secret
	expected := strings.ToUpper(fmt.Sprintf("%x", md5.Sum([]byte(expectedRaw))))

	assert.Equal(t, expected, Sign(params, secret))
}

func TestSignIsDeterministic(t *testing.T) {
	params := map[string]string{
		"q":         "running shoes",
		"page_no":   "1",
		"page_size": "10",
	}

	first := Sign(params, "s3cr3t")
	second := Sign(params, "s3cr3t")

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
	assert.Equal(t, strings.ToUpper(first), first)
}

func TestSignChangesWithSecret(t *testing.T) {
	params := map[string]string{"q": "shoes"}

	assert.NotEqual(t, Sign(params, "one"), Sign(params, "two"))
}
