package api

import (
	"bytes"
	"encoding/json"

	"github.com/jrsteele09/regulus-console/internal/errors"
)

// Unwrap decodes raw into T, stripping a {success, data} envelope when the
// payload is an object carrying a data field. Bare values decode directly.
func Unwrap[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}

	payload := raw
	if trimmed := bytes.TrimSpace(raw); trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			if data, ok := fields["data"]; ok {
				payload = data
			}
		}
	}

	if err := json.Unmarshal(payload, &out); err != nil {
		return out, errors.Wrapf(errors.ErrInvalidResponse, "api.Unwrap: %v", err)
	}
	return out, nil
}
