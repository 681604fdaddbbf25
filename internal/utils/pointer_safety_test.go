package utils_test

import (
	"testing"

	"github.com/jrsteele09/kogase-admin/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	var missing *float64
	require.Equal(t, 0.0, utils.Value(missing))
	require.Equal(t, 2.5, utils.Value(utils.Ptr(2.5)))
	require.Equal(t, "", utils.Value[string](nil))
}
