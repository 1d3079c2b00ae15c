package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Operation is the provider's handle for a long-running video job. Its shape
// belongs to the provider and may change between polls, so it is kept as the
// raw JSON document and sent back untouched. Only the done flag and the
// result path are ever read from it.
type Operation struct {
	raw json.RawMessage
}

// NewOperation wraps a raw provider document.
func NewOperation(raw []byte) (Operation, error) {
	var op Operation
	if err := op.UnmarshalJSON(raw); err != nil {
		return Operation{}, err
	}
	return op, nil
}

// IsZero reports whether the operation carries no document at all.
func (o Operation) IsZero() bool {
	trimmed := bytes.TrimSpace(o.raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Raw returns a copy of the underlying document.
func (o Operation) Raw() json.RawMessage {
	return append(json.RawMessage(nil), o.raw...)
}

func (o Operation) MarshalJSON() ([]byte, error) {
	if o.IsZero() {
		return []byte("null"), nil
	}
	return o.Raw(), nil
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) && trimmed[0] != '{' {
		return errors.New("operation must be a JSON object")
	}
	o.raw = append(json.RawMessage(nil), data...)
	return nil
}

type operationView struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Response *struct {
		GeneratedVideos []struct {
			Video *struct {
				URI string `json:"uri"`
			} `json:"video"`
		} `json:"generatedVideos"`
		GenerateVideoResponse *struct {
			GeneratedSamples []struct {
				Video *struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
}

func (o Operation) view() (operationView, error) {
	var v operationView
	if o.IsZero() {
		return v, nil
	}
	if err := json.Unmarshal(o.raw, &v); err != nil {
		return operationView{}, fmt.Errorf("malformed operation: %w", err)
	}
	return v, nil
}

// Name is the provider resource name used to poll the operation.
func (o Operation) Name() string {
	v, _ := o.view()
	return strings.TrimSpace(v.Name)
}

// Done reports the provider's completion flag. A document whose known fields
// cannot be decoded counts as done so pollers stop instead of spinning on it.
func (o Operation) Done() bool {
	v, err := o.view()
	return err != nil || v.Done
}

// ErrorMessage returns the provider-reported failure for a finished job, or
// the decode failure for a malformed document.
func (o Operation) ErrorMessage() string {
	v, err := o.view()
	if err != nil {
		return err.Error()
	}
	if v.Error == nil {
		return ""
	}
	return strings.TrimSpace(v.Error.Message)
}

// VideoURI extracts the first generated video's upstream URI. Both the SDK
// shape (generatedVideos) and the REST shape
// (generateVideoResponse.generatedSamples) are understood.
func (o Operation) VideoURI() (string, bool) {
	v, err := o.view()
	if err != nil || v.Response == nil {
		return "", false
	}
	if len(v.Response.GeneratedVideos) > 0 {
		if video := v.Response.GeneratedVideos[0].Video; video != nil && strings.TrimSpace(video.URI) != "" {
			return strings.TrimSpace(video.URI), true
		}
	}
	if r := v.Response.GenerateVideoResponse; r != nil && len(r.GeneratedSamples) > 0 {
		if video := r.GeneratedSamples[0].Video; video != nil && strings.TrimSpace(video.URI) != "" {
			return strings.TrimSpace(video.URI), true
		}
	}
	return "", false
}
