// Package apiconnect binds the api messages to Connect handlers and clients
// for the mutualaid.v1 services.
package apiconnect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/mutualaid/pkg/api"
)

// router dispatches a service's procedures by exact path.
type router map[string]http.Handler

func (r router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r[req.URL.Path]; ok {
		h.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func withClientCodec(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}
