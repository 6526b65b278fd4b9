package shape

import (
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DecodeHTTPResponse reads an API response body and decodes it as JSON.
//
// A response without a body, or with an empty one, decodes to an empty Map.
// When a Content-Type is present it must be application/json. The body is
// read fully but not closed; that stays with the caller.
func DecodeHTTPResponse(resp *http.Response) (Value, error) {
	if resp == nil || resp.Body == nil || resp.ContentLength == 0 {
		return Map(nil), nil
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return Value{}, fmt.Errorf("%w: bad content type %q: %w", ErrInvalidDocument, ct, err)
		}
		if mediaType != ContentTypeApplicationJSON {
			return Value{}, fmt.Errorf("%w: expected %s, got %s", ErrInvalidDocument, ContentTypeApplicationJSON, mediaType)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Value{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) == 0 {
		return Map(nil), nil
	}

	return DecodeJSON(body)
}
