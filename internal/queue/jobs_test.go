package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelayBacksOffExponentially(t *testing.T) {
	// asynq hands RetryDelayFunc the task's prior retry count: 0 when the
	// first delivery fails, 1 when the second fails. The resulting schedule
	// must double from a 2s base, not stay flat.
	assert.Equal(t, 2*time.Second, RetryDelay(0, nil, nil))
	assert.Equal(t, 4*time.Second, RetryDelay(1, nil, nil))
	assert.Equal(t, 8*time.Second, RetryDelay(2, nil, nil))
}

func TestRetryDelayClampsNegativeCount(t *testing.T) {
	assert.Equal(t, 2*time.Second, RetryDelay(-1, nil, nil))
}
