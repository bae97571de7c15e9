package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// maxBodyBytes bounds inbound request bodies. Registration carries a face
// image as a data URL, so the limit is generous.
const maxBodyBytes = 12 << 20

// Envelope is the uniform response body: {"success": ..., "message": ..., ...extra}.
type Envelope map[string]any

// Result starts an envelope.
func Result(success bool, message string) Envelope {
	return Envelope{"success": success, "message": message}
}

// With adds a field and returns the envelope for chaining.
func (e Envelope) With(key string, value any) Envelope {
	e[key] = value
	return e
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// WriteEnvelope writes e with status 200. Business outcomes, including
// failures, are reported through the success field.
func WriteEnvelope(w http.ResponseWriter, e Envelope) {
	WriteJSON(w, http.StatusOK, e)
}

// WriteFailure writes an envelope with success=false and the given status.
func WriteFailure(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Result(false, message))
}

var errUnsupportedBody = errors.New("unsupported request body")

// readFields reads a flat set of string fields from a JSON object or an
// urlencoded/multipart form. JSON scalars are converted to strings; nested
// values are rejected.
func readFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case ct == "application/json" || strings.HasSuffix(ct, "+json"):
		return decodeJSONFields(r.Body)
	case ct == "application/x-www-form-urlencoded", ct == "multipart/form-data", ct == "":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		out := make(map[string]string, len(r.PostForm))
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				out[k] = vs[0]
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedBody, ct)
	}
}

func decodeJSONFields(body io.Reader) (map[string]string, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			return nil, fmt.Errorf("%w: field %q is not a scalar", errUnsupportedBody, k)
		}
	}
	return out, nil
}
