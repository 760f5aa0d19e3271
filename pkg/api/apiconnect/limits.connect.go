package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/mutualaid/pkg/api"
)

// LimitsServiceName is the fully-qualified name of the LimitsService.
const LimitsServiceName = "mutualaid.v1.LimitsService"

const (
	LimitsServiceGetMyUsageProcedure    = "/mutualaid.v1.LimitsService/GetMyUsage"
	LimitsServiceSetUserLimitsProcedure = "/mutualaid.v1.LimitsService/SetUserLimits"
)

// LimitsServiceHandler is the server side of the LimitsService.
type LimitsServiceHandler interface {
	GetMyUsage(context.Context, *connect.Request[api.GetMyUsageRequest]) (*connect.Response[api.GetMyUsageResponse], error)
	SetUserLimits(context.Context, *connect.Request[api.SetUserLimitsRequest]) (*connect.Response[api.SetUserLimitsResponse], error)
}

// NewLimitsServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on. The api JSON codec is always installed.
func NewLimitsServiceHandler(svc LimitsServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return "/" + LimitsServiceName + "/", router{
		LimitsServiceGetMyUsageProcedure:    connect.NewUnaryHandler(LimitsServiceGetMyUsageProcedure, svc.GetMyUsage, opts...),
		LimitsServiceSetUserLimitsProcedure: connect.NewUnaryHandler(LimitsServiceSetUserLimitsProcedure, svc.SetUserLimits, opts...),
	}
}

// LimitsServiceClient is the client side of the LimitsService.
type LimitsServiceClient interface {
	GetMyUsage(context.Context, *connect.Request[api.GetMyUsageRequest]) (*connect.Response[api.GetMyUsageResponse], error)
	SetUserLimits(context.Context, *connect.Request[api.SetUserLimitsRequest]) (*connect.Response[api.SetUserLimitsResponse], error)
}

// NewLimitsServiceClient calls the LimitsService at baseURL, e.g. http://localhost:8080.
func NewLimitsServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LimitsServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &limitsServiceClient{
		getMyUsage:    connect.NewClient[api.GetMyUsageRequest, api.GetMyUsageResponse](httpClient, baseURL+LimitsServiceGetMyUsageProcedure, opts...),
		setUserLimits: connect.NewClient[api.SetUserLimitsRequest, api.SetUserLimitsResponse](httpClient, baseURL+LimitsServiceSetUserLimitsProcedure, opts...),
	}
}

type limitsServiceClient struct {
	getMyUsage    *connect.Client[api.GetMyUsageRequest, api.GetMyUsageResponse]
	setUserLimits *connect.Client[api.SetUserLimitsRequest, api.SetUserLimitsResponse]
}

func (c *limitsServiceClient) GetMyUsage(ctx context.Context, req *connect.Request[api.GetMyUsageRequest]) (*connect.Response[api.GetMyUsageResponse], error) {
	return c.getMyUsage.CallUnary(ctx, req)
}

func (c *limitsServiceClient) SetUserLimits(ctx context.Context, req *connect.Request[api.SetUserLimitsRequest]) (*connect.Response[api.SetUserLimitsResponse], error) {
	return c.setUserLimits.CallUnary(ctx, req)
}
