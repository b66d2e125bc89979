package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSiteverify(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	captured := &http.Request{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		*captured = *r
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestRecaptchaVerifier_Success(t *testing.T) {
	srv, req := newSiteverify(t, http.StatusOK, `{"success":true,"score":0.9,"action":"subscribe"}`)
	v := NewRecaptchaVerifier("shh", 0.5, zap.NewNop()).WithEndpoint(srv.URL)

	err := v.Verify(context.Background(), "token-abc", "203.0.113.7")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "shh", req.PostForm.Get("secret"))
	assert.Equal(t, "token-abc", req.PostForm.Get("response"))
	assert.Equal(t, "203.0.113.7", req.PostForm.Get("remoteip"))
}

func TestRecaptchaVerifier_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not successful", `{"success":false,"error-codes":["invalid-input-response"]}`},
		{"low score", `{"success":true,"score":0.1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newSiteverify(t, http.StatusOK, tt.body)
			v := NewRecaptchaVerifier("shh", 0.5, zap.NewNop()).WithEndpoint(srv.URL)

			err := v.Verify(context.Background(), "token-abc", "")

			assert.ErrorIs(t, err, ErrVerificationFailed)
		})
	}
}

func TestRecaptchaVerifier_V2ResponseWithoutScore(t *testing.T) {
	srv, _ := newSiteverify(t, http.StatusOK, `{"success":true}`)
	v := NewRecaptchaVerifier("shh", 0.5, zap.NewNop()).WithEndpoint(srv.URL)

	assert.NoError(t, v.Verify(context.Background(), "token-abc", ""))
}

func TestRecaptchaVerifier_MissingToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	v := NewRecaptchaVerifier("shh", 0.5, zap.NewNop()).WithEndpoint(srv.URL)

	err := v.Verify(context.Background(), "  ", "")

	assert.ErrorIs(t, err, ErrMissingToken)
	assert.False(t, called)
}

func TestRecaptchaVerifier_UpstreamFailure(t *testing.T) {
	srv, _ := newSiteverify(t, http.StatusBadGateway, ``)
	v := NewRecaptchaVerifier("shh", 0.5, zap.NewNop()).WithEndpoint(srv.URL)

	err := v.Verify(context.Background(), "token-abc", "")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVerificationFailed)
}

func TestNew_WithoutSecretAcceptsEverything(t *testing.T) {
	v := New("", 0.5, zap.NewNop())

	assert.IsType(t, NopVerifier{}, v)
	assert.NoError(t, v.Verify(context.Background(), "", ""))
}
