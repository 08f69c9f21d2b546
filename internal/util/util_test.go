package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/util"
)

type components struct {
	Name    string
	Store   map[string]int
	Service interface{ Do() }
	Items   []int
	private *int
}

func TestIsStructInitialized(t *testing.T) {
	err := util.IsStructInitialized(&components{
		Store: map[string]int{},
		Items: []int{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Service")
	assert.NotContains(t, err.Error(), "Store")
	assert.NotContains(t, err.Error(), "private")
	assert.NotContains(t, err.Error(), "Name")
}

func TestIsStructInitializedRejectsNonStruct(t *testing.T) {
	require.Error(t, util.IsStructInitialized(nil))
	require.Error(t, util.IsStructInitialized(components{}))

	n := 1
	require.Error(t, util.IsStructInitialized(&n))
}
