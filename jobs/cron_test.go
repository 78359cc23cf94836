package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) ExpireLapsed(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("missing deadline")
	}
	return 2, c.err
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("every tuesday", &countingSweeper{})
	assert.Error(t, err)
}

func TestSchedulerRegistersSweep(t *testing.T) {
	sw := &countingSweeper{}
	s, err := NewScheduler("@hourly", sw)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.Zero(t, sw.calls.Load())
}

func TestSweepCallsSweeper(t *testing.T) {
	sw := &countingSweeper{err: errors.New("db down")}
	s, err := NewScheduler("*/5 * * * *", sw)
	require.NoError(t, err)

	s.sweep()
	s.sweep()
	assert.Equal(t, int32(2), sw.calls.Load())
}
