package cache

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsernames_LookupCurrentUser(t *testing.T) {
	c := NewUsernames()
	uid := uint32(os.Getuid())
	name := c.Lookup(uid)
	assert.NotEmpty(t, name)
	assert.Equal(t, 1, c.Len())

	// Second lookup must hit the cache and return the same value.
	assert.Equal(t, name, c.Lookup(uid))
	assert.Equal(t, 1, c.Len())
}

func TestUsernames_UnknownUidFallsBackToNumeric(t *testing.T) {
	c := NewUsernames()
	const bogus = uint32(1 << 30)
	name := c.Lookup(bogus)
	assert.Equal(t, strconv.FormatUint(uint64(bogus), 10), name)
}
