package dbutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebindToQuestion(t *testing.T) {
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		RebindToQuestion("SELECT * FROM t WHERE id = $1 AND name = $2"))
	assert.Equal(t, "UPDATE t SET a = ? WHERE id = ?",
		StripPgCasts(RebindToQuestion("UPDATE t SET a = $1::varchar WHERE id = $2")))
}

func TestSetClause(t *testing.T) {
	assert.Equal(t, "name = $1, bio = $2", SetClause([]string{"name", "bio"}, 1))
	assert.Equal(t, "email = $3", SetClause([]string{"email"}, 3))
	assert.Equal(t, "", SetClause(nil, 1))
}
