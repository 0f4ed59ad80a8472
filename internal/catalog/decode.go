package catalog

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/go-faster/errors"

	"decorprice/internal"
)

// readBody returns the decompressed response body. The client asks for
// gzip and br itself, so net/http leaves decoding to us.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "gzip body")
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	return io.ReadAll(reader)
}

func decodePayload(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode json")
	}
	return payload, nil
}

// asRecord accepts a JSON object. A null payload or an empty object means
// no record.
func asRecord(payload any) (internal.RawRecord, bool) {
	switch t := payload.(type) {
	case nil:
		return nil, true
	case map[string]any:
		if len(t) == 0 {
			return nil, true
		}
		return internal.RawRecord(t), true
	}
	return nil, false
}

// asRecordList accepts a JSON array; elements that are not objects are
// skipped.
func asRecordList(payload any) ([]internal.RawRecord, bool) {
	arr, ok := payload.([]any)
	if !ok {
		return nil, false
	}
	out := make([]internal.RawRecord, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok && len(m) > 0 {
			out = append(out, internal.RawRecord(m))
		}
	}
	return out, true
}

func jsonKind(payload any) string {
	switch payload.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	}
	return "unknown"
}
