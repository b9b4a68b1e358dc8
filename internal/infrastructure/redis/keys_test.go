package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "auth:revoked:abc", revokedKey("abc"))
	assert.Equal(t, "auth:reset:tok", resetKey("tok"))
	assert.Equal(t, "kardex:stats:42", statsKey(42))
}
