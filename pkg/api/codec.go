// Package api holds the wire messages of the mutualaid.v1 services.
//
// Messages travel as JSON. Timestamps are Unix milliseconds; zero means
// unset.
package api

import "encoding/json"

// Codec is the Connect codec for api messages. It takes over the "json"
// codec name, so the Connect protocol uses application/json for unary calls.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
