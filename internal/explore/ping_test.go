package explore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datquery/dbexplorer/internal/errs"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(ctx context.Context, dbName string) error {
	return p.err
}

func TestTestConnection(t *testing.T) {
	status := TestConnection(context.Background(), &fakePinger{}, "main")
	assert.Equal(t, ConnectionStatus{Database: "main", Connected: true}, status)
}

func TestTestConnectionReportsFailure(t *testing.T) {
	p := &fakePinger{err: errs.New(errs.ErrKindConnectionFailed, "connection refused")}
	status := TestConnection(context.Background(), p, "main")

	assert.False(t, status.Connected)
	assert.Contains(t, status.Error, "connection refused")
	assert.Equal(t, "main", status.Database)
}
