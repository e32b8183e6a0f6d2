package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type sweeper struct{}

func (sweeper) Run(context.Context) error { return nil }

func TestGetWorkerName(t *testing.T) {
	req := require.New(t)
	req.Equal("sweeper", GetWorkerName(sweeper{}))
	req.Equal("sweeper", GetWorkerName(&sweeper{}))
	req.Equal("NilWorker", GetWorkerName(nil))
}
