package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

const (
	// tokenLength is the exact length of a valid transaction token.
	tokenLength = 40

	// maxBodyBytes caps how much of an inbound notification body is read.
	// Valid notifications are tiny; anything larger is adversarial.
	maxBodyBytes = 1 << 20
)

// Verify is the authentication gate for inbound provider notifications.
//
// With a non-empty secret, a request passes only when all of the following
// hold: the method is POST, the body contains exactly one field, the "secret"
// query parameter equals the configured secret, and the single field is named
// "token" and is a string of exactly 40 characters. Every other shape gets the
// generic not-found response, identical regardless of which check failed, with
// no side effects and no remote calls.
//
// An empty secret disables the gate entirely and requests pass through
// unparsed. That degraded mode is deliberate and mirrors the provider
// configuration, where the webhook secret is optional.
func Verify(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

			if r.Method != http.MethodPost {
				http.NotFound(w, r)
				return
			}
			if !equalSecret(r.URL.Query().Get("secret"), secret) {
				http.NotFound(w, r)
				return
			}

			fields, ok := bodyFields(r)
			if !ok || len(fields) != 1 {
				http.NotFound(w, r)
				return
			}
			token, isString := fields["token"].(string)
			if !isString || len(token) != tokenLength {
				http.NotFound(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withToken(r.Context(), token)))
		})
	}
}

// equalSecret compares in constant time to keep the comparison from leaking
// prefix length through timing. Equality is exact, byte for byte.
func equalSecret(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// bodyFields parses the request body into named fields. Uploaded files are not
// fields: a multipart file part named "token" leaves the field set empty.
// A body that cannot be parsed under its declared content type reports false.
func bodyFields(r *http.Request) (map[string]any, bool) {
	switch mediaType(r.Header.Get("Content-Type")) {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, false
		}
		fields := make(map[string]any, len(r.PostForm))
		for name := range r.PostForm {
			fields[name] = r.PostForm.Get(name)
		}
		return fields, true

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, false
		}
		fields := make(map[string]any, len(r.MultipartForm.Value))
		for name, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				fields[name] = values[0]
			}
		}
		return fields, true

	case "application/json":
		var fields map[string]any
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&fields); err != nil {
			return nil, false
		}
		return fields, true

	default:
		return nil, false
	}
}

func mediaType(contentType string) string {
	for i := range len(contentType) {
		if contentType[i] == ';' {
			return contentType[:i]
		}
	}
	return contentType
}
