package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// maxBodyBytes caps request bodies read while looking up parameters
const maxBodyBytes = 1 << 20

// ErrInvalidBody is returned when a JSON request body cannot be decoded
var ErrInvalidBody = errors.New("invalid request body")

// RequestParams reads the named string parameters of a request.
//
// Each name is looked up in the query string first, then in the body. Form
// bodies (urlencoded or multipart) and JSON object bodies are supported.
// Missing parameters are returned as empty strings.
func RequestParams(r *http.Request, names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	query := r.URL.Query()

	missing := false
	for _, name := range names {
		values[name] = query.Get(name)
		if values[name] == "" {
			missing = true
		}
	}
	if !missing || r.Body == nil || r.Body == http.NoBody {
		return values, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body map[string]json.RawMessage
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				return values, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		for _, name := range names {
			raw, ok := body[name]
			if values[name] != "" || !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidBody, name)
			}
			values[name] = s
		}

	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		for _, name := range names {
			if values[name] == "" {
				values[name] = r.PostFormValue(name)
			}
		}
	}

	return values, nil
}
