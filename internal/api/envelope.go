package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope shape changes so clients can
// detect incompatible servers.
const envelopeVersion = 1

// Envelope is the wire shape of every API response. Successful responses
// carry data, failures carry the error; the two are mutually exclusive.
type Envelope struct {
	V       int    `json:"v" doc:"Envelope schema version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload on success"`
	Error   any    `json:"error,omitempty" doc:"Error payload on failure"`
	TraceID string `json:"trace_id,omitempty" doc:"Request ID for correlating logs"`
}

// EnvelopeTransformer wraps every huma response body in the standard
// envelope. Registered on the huma config, so handlers return bare
// payloads and never see the envelope.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	success := len(status) > 0 && (status[0] == '2' || status[0] == '3')

	envelope := Envelope{
		V:       envelopeVersion,
		Success: success,
	}
	if ctx != nil {
		envelope.TraceID = ctx.Header("X-Request-Id")
	}

	if success {
		envelope.Data = v
	} else {
		envelope.Error = v
	}
	return envelope, nil
}
