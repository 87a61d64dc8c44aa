package api

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/marktlinn/kvstore/store"
)

// TestStartStopsOnContextCancel ensures the server shuts down cleanly once its context ends.
func TestStartStopsOnContextCancel(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	a := &Api{Address: "127.0.0.1", Port: 0, Store: store.NewInMemoryRecordStore(), Logger: l}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
