package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lastara-storefront/internal/storefront/client"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSubscribeCmd_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/newsletter", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	out, err := runCmd(t, "subscribe", "9876543210", "--api", srv.URL)

	require.NoError(t, err)
	assert.Contains(t, out, client.MsgSubscribed)
}

func TestSubscribeCmd_InvalidPhoneNeverCallsAPI(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	_, err := runCmd(t, "subscribe", "5551234567", "--api", srv.URL)

	assert.EqualError(t, err, client.MsgInvalidPhone)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSubscribeCmd_Duplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	_, err := runCmd(t, "subscribe", "9876543210", "--api", srv.URL)

	assert.EqualError(t, err, client.MsgAlreadySubscribed)
}

func TestSubscribeCmd_RequiresPhone(t *testing.T) {
	_, err := runCmd(t, "subscribe")

	assert.Error(t, err)
}
