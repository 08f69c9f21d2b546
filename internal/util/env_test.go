package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github/chapool/go-batchpay/internal/util"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("BATCHPAY_TEST_STR", "value")
	assert.Equal(t, "value", util.GetEnv("BATCHPAY_TEST_STR", "default"))
	assert.Equal(t, "default", util.GetEnv("BATCHPAY_TEST_UNSET", "default"))
}

func TestGetEnvEnum(t *testing.T) {
	allowed := []string{"static", "explorer"}

	t.Setenv("BATCHPAY_TEST_ENUM", "explorer")
	assert.Equal(t, "explorer", util.GetEnvEnum("BATCHPAY_TEST_ENUM", "static", allowed))

	t.Setenv("BATCHPAY_TEST_ENUM", "magic")
	assert.Equal(t, "static", util.GetEnvEnum("BATCHPAY_TEST_ENUM", "static", allowed))

	assert.Panics(t, func() {
		util.GetEnvEnum("BATCHPAY_TEST_ENUM", "nope", allowed)
	})
}

func TestGetEnvNumbers(t *testing.T) {
	t.Setenv("BATCHPAY_TEST_INT", "42")
	t.Setenv("BATCHPAY_TEST_INT64", "11155111")
	t.Setenv("BATCHPAY_TEST_UINT32", "-1")
	t.Setenv("BATCHPAY_TEST_BOOL", "true")

	assert.Equal(t, 42, util.GetEnvAsInt("BATCHPAY_TEST_INT", 1))
	assert.Equal(t, int64(11155111), util.GetEnvAsInt64("BATCHPAY_TEST_INT64", 1))
	assert.Equal(t, uint32(5), util.GetEnvAsUint32("BATCHPAY_TEST_UINT32", 5))
	assert.True(t, util.GetEnvAsBool("BATCHPAY_TEST_BOOL", false))
	assert.Equal(t, 7, util.GetEnvAsInt("BATCHPAY_TEST_UNSET", 7))
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("BATCHPAY_TEST_DURATION", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, util.GetEnvAsDuration("BATCHPAY_TEST_DURATION", time.Second))

	t.Setenv("BATCHPAY_TEST_DURATION", "soon")
	assert.Equal(t, time.Second, util.GetEnvAsDuration("BATCHPAY_TEST_DURATION", time.Second))
}

func TestGetEnvAsStringArrTrimmed(t *testing.T) {
	t.Setenv("BATCHPAY_TEST_ARR", " http://a:8545 ,, http://b:8545 ")
	assert.Equal(t, []string{"http://a:8545", "http://b:8545"}, util.GetEnvAsStringArrTrimmed("BATCHPAY_TEST_ARR", nil))

	t.Setenv("BATCHPAY_TEST_ARR", "a|b")
	assert.Equal(t, []string{"a", "b"}, util.GetEnvAsStringArrTrimmed("BATCHPAY_TEST_ARR", nil, "|"))

	t.Setenv("BATCHPAY_TEST_ARR", " , ")
	assert.Equal(t, []string{"x"}, util.GetEnvAsStringArrTrimmed("BATCHPAY_TEST_ARR", []string{"x"}))
}
