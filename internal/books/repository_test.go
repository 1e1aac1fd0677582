package books

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludeArgNilBecomesEmptyArray(t *testing.T) {
	// A user with no history has a nil exclusion list. The bound
	// parameter must be '{}', never NULL: `NOT (id = ANY(NULL))` is
	// NULL in Postgres and would match zero rows, emptying both the
	// candidate query and the terminal popular fallback.
	v, err := excludeArg(nil).(driver.Valuer).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestExcludeArgKeepsIDs(t *testing.T) {
	v, err := excludeArg([]int64{3, 7}).(driver.Valuer).Value()
	require.NoError(t, err)
	assert.Equal(t, "{3,7}", v)
}
