package webhook_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flowkit/pkg/webhook"
)

const (
	testSecret = "sh4r3d-s3cr3t"
	testToken  = "0123456789012345678901234567890123456789" // 40 chars
)

// gateHandler wraps a capturing handler in the gate so tests can assert both
// the response and whether the request made it through.
func gateHandler(secret string) (http.Handler, *string) {
	var seenToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := webhook.TokenFromContext(r.Context()); ok {
			seenToken = token
		}
		w.WriteHeader(http.StatusOK)
	})
	return webhook.Verify(secret)(next), &seenToken
}

func formRequest(method, target string, fields url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestVerify_AcceptsWellFormedNotification(t *testing.T) {
	t.Parallel()

	handler, seenToken := gateHandler(testSecret)
	req := formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{"token": {testToken}})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testToken, *seenToken)
}

func TestVerify_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{
			name: "wrong method",
			req: func() *http.Request {
				return formRequest(http.MethodGet, "/payment?secret="+testSecret, url.Values{"token": {testToken}})
			},
		},
		{
			name: "wrong secret",
			req: func() *http.Request {
				return formRequest(http.MethodPost, "/payment?secret=nope", url.Values{"token": {testToken}})
			},
		},
		{
			name: "missing secret parameter",
			req: func() *http.Request {
				return formRequest(http.MethodPost, "/payment", url.Values{"token": {testToken}})
			},
		},
		{
			name: "secret is a prefix of the configured one",
			req: func() *http.Request {
				return formRequest(http.MethodPost, "/payment?secret="+testSecret[:5], url.Values{"token": {testToken}})
			},
		},
		{
			name: "extra body field",
			req: func() *http.Request {
				return formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{
					"token": {testToken},
					"extra": {"1"},
				})
			},
		},
		{
			name: "empty body",
			req: func() *http.Request {
				return formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{})
			},
		},
		{
			name: "token too short",
			req: func() *http.Request {
				return formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{"token": {testToken[:39]}})
			},
		},
		{
			name: "token too long",
			req: func() *http.Request {
				return formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{"token": {testToken + "x"}})
			},
		},
		{
			name: "single field not named token",
			req: func() *http.Request {
				return formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{"tkn": {testToken}})
			},
		},
		{
			name: "json token is not a string",
			req: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/payment?secret="+testSecret, strings.NewReader(`{"token": 12345}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
		},
		{
			name: "malformed json body",
			req: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/payment?secret="+testSecret, strings.NewReader(`{"token": `))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
		},
		{
			name: "unknown content type",
			req: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/payment?secret="+testSecret, strings.NewReader("token="+testToken))
				req.Header.Set("Content-Type", "text/plain")
				return req
			},
		},
		{
			name: "multipart file part is not a field",
			req: func() *http.Request {
				var buf bytes.Buffer
				mw := multipart.NewWriter(&buf)
				fw, _ := mw.CreateFormFile("token", "token.txt")
				_, _ = io.WriteString(fw, testToken)
				_ = mw.Close()

				req := httptest.NewRequest(http.MethodPost, "/payment?secret="+testSecret, &buf)
				req.Header.Set("Content-Type", mw.FormDataContentType())
				return req
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler, seenToken := gateHandler(testSecret)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, tt.req())

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, *seenToken)
		})
	}
}

func TestVerify_UniformRejectionBody(t *testing.T) {
	t.Parallel()

	handler, _ := gateHandler(testSecret)

	record := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	wrongMethod := record(formRequest(http.MethodGet, "/payment?secret="+testSecret, url.Values{"token": {testToken}}))
	wrongSecret := record(formRequest(http.MethodPost, "/payment?secret=nope", url.Values{"token": {testToken}}))
	badToken := record(formRequest(http.MethodPost, "/payment?secret="+testSecret, url.Values{"token": {"short"}}))

	require.Equal(t, http.StatusNotFound, wrongMethod.Code)
	assert.Equal(t, wrongMethod.Body.String(), wrongSecret.Body.String())
	assert.Equal(t, wrongMethod.Body.String(), badToken.Body.String())
}

func TestVerify_EmptySecretPassesThrough(t *testing.T) {
	t.Parallel()

	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		_, ok := webhook.TokenFromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})
	handler := webhook.Verify("")(next)

	// Even a shape the gate would reject goes through untouched.
	req := httptest.NewRequest(http.MethodGet, "/payment", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerify_MultipartValueAccepted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("token", testToken))
	require.NoError(t, mw.Close())

	handler, seenToken := gateHandler(testSecret)
	req := httptest.NewRequest(http.MethodPost, "/payment?secret="+testSecret, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testToken, *seenToken)
}

func TestVerify_JSONAccepted(t *testing.T) {
	t.Parallel()

	handler, seenToken := gateHandler(testSecret)
	req := httptest.NewRequest(http.MethodPost, "/payment?secret="+testSecret, strings.NewReader(`{"token": "`+testToken+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testToken, *seenToken)
}
