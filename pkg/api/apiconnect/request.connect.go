package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/mutualaid/pkg/api"
)

// RequestServiceName is the fully-qualified name of the RequestService.
const RequestServiceName = "mutualaid.v1.RequestService"

const (
	RequestServiceCreateRequestProcedure     = "/mutualaid.v1.RequestService/CreateRequest"
	RequestServiceUpdateRequestProcedure     = "/mutualaid.v1.RequestService/UpdateRequest"
	RequestServiceGetRequestProcedure        = "/mutualaid.v1.RequestService/GetRequest"
	RequestServiceListGroupRequestsProcedure = "/mutualaid.v1.RequestService/ListGroupRequests"
	RequestServiceListMyRequestsProcedure    = "/mutualaid.v1.RequestService/ListMyRequests"
	RequestServiceListMyClaimsProcedure      = "/mutualaid.v1.RequestService/ListMyClaims"
	RequestServiceClaimRequestProcedure      = "/mutualaid.v1.RequestService/ClaimRequest"
	RequestServiceUnclaimRequestProcedure    = "/mutualaid.v1.RequestService/UnclaimRequest"
	RequestServiceFulfillRequestProcedure    = "/mutualaid.v1.RequestService/FulfillRequest"
	RequestServiceDeleteRequestProcedure     = "/mutualaid.v1.RequestService/DeleteRequest"
)

// RequestServiceHandler is the server side of the RequestService.
type RequestServiceHandler interface {
	CreateRequest(context.Context, *connect.Request[api.CreateRequestRequest]) (*connect.Response[api.CreateRequestResponse], error)
	UpdateRequest(context.Context, *connect.Request[api.UpdateRequestRequest]) (*connect.Response[api.UpdateRequestResponse], error)
	GetRequest(context.Context, *connect.Request[api.GetRequestRequest]) (*connect.Response[api.GetRequestResponse], error)
	ListGroupRequests(context.Context, *connect.Request[api.ListGroupRequestsRequest]) (*connect.Response[api.ListGroupRequestsResponse], error)
	ListMyRequests(context.Context, *connect.Request[api.ListMyRequestsRequest]) (*connect.Response[api.ListMyRequestsResponse], error)
	ListMyClaims(context.Context, *connect.Request[api.ListMyClaimsRequest]) (*connect.Response[api.ListMyClaimsResponse], error)
	ClaimRequest(context.Context, *connect.Request[api.ClaimRequestRequest]) (*connect.Response[api.ClaimRequestResponse], error)
	UnclaimRequest(context.Context, *connect.Request[api.UnclaimRequestRequest]) (*connect.Response[api.UnclaimRequestResponse], error)
	FulfillRequest(context.Context, *connect.Request[api.FulfillRequestRequest]) (*connect.Response[api.FulfillRequestResponse], error)
	DeleteRequest(context.Context, *connect.Request[api.DeleteRequestRequest]) (*connect.Response[api.DeleteRequestResponse], error)
}

// NewRequestServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on. The api JSON codec is always installed.
func NewRequestServiceHandler(svc RequestServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return "/" + RequestServiceName + "/", router{
		RequestServiceCreateRequestProcedure:     connect.NewUnaryHandler(RequestServiceCreateRequestProcedure, svc.CreateRequest, opts...),
		RequestServiceUpdateRequestProcedure:     connect.NewUnaryHandler(RequestServiceUpdateRequestProcedure, svc.UpdateRequest, opts...),
		RequestServiceGetRequestProcedure:        connect.NewUnaryHandler(RequestServiceGetRequestProcedure, svc.GetRequest, opts...),
		RequestServiceListGroupRequestsProcedure: connect.NewUnaryHandler(RequestServiceListGroupRequestsProcedure, svc.ListGroupRequests, opts...),
		RequestServiceListMyRequestsProcedure:    connect.NewUnaryHandler(RequestServiceListMyRequestsProcedure, svc.ListMyRequests, opts...),
		RequestServiceListMyClaimsProcedure:      connect.NewUnaryHandler(RequestServiceListMyClaimsProcedure, svc.ListMyClaims, opts...),
		RequestServiceClaimRequestProcedure:      connect.NewUnaryHandler(RequestServiceClaimRequestProcedure, svc.ClaimRequest, opts...),
		RequestServiceUnclaimRequestProcedure:    connect.NewUnaryHandler(RequestServiceUnclaimRequestProcedure, svc.UnclaimRequest, opts...),
		RequestServiceFulfillRequestProcedure:    connect.NewUnaryHandler(RequestServiceFulfillRequestProcedure, svc.FulfillRequest, opts...),
		RequestServiceDeleteRequestProcedure:     connect.NewUnaryHandler(RequestServiceDeleteRequestProcedure, svc.DeleteRequest, opts...),
	}
}

// RequestServiceClient is the client side of the RequestService.
type RequestServiceClient interface {
	CreateRequest(context.Context, *connect.Request[api.CreateRequestRequest]) (*connect.Response[api.CreateRequestResponse], error)
	UpdateRequest(context.Context, *connect.Request[api.UpdateRequestRequest]) (*connect.Response[api.UpdateRequestResponse], error)
	GetRequest(context.Context, *connect.Request[api.GetRequestRequest]) (*connect.Response[api.GetRequestResponse], error)
	ListGroupRequests(context.Context, *connect.Request[api.ListGroupRequestsRequest]) (*connect.Response[api.ListGroupRequestsResponse], error)
	ListMyRequests(context.Context, *connect.Request[api.ListMyRequestsRequest]) (*connect.Response[api.ListMyRequestsResponse], error)
	ListMyClaims(context.Context, *connect.Request[api.ListMyClaimsRequest]) (*connect.Response[api.ListMyClaimsResponse], error)
	ClaimRequest(context.Context, *connect.Request[api.ClaimRequestRequest]) (*connect.Response[api.ClaimRequestResponse], error)
	UnclaimRequest(context.Context, *connect.Request[api.UnclaimRequestRequest]) (*connect.Response[api.UnclaimRequestResponse], error)
	FulfillRequest(context.Context, *connect.Request[api.FulfillRequestRequest]) (*connect.Response[api.FulfillRequestResponse], error)
	DeleteRequest(context.Context, *connect.Request[api.DeleteRequestRequest]) (*connect.Response[api.DeleteRequestResponse], error)
}

// NewRequestServiceClient calls the RequestService at baseURL, e.g. http://localhost:8080.
func NewRequestServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RequestServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &requestServiceClient{
		createRequest:     connect.NewClient[api.CreateRequestRequest, api.CreateRequestResponse](httpClient, baseURL+RequestServiceCreateRequestProcedure, opts...),
		updateRequest:     connect.NewClient[api.UpdateRequestRequest, api.UpdateRequestResponse](httpClient, baseURL+RequestServiceUpdateRequestProcedure, opts...),
		getRequest:        connect.NewClient[api.GetRequestRequest, api.GetRequestResponse](httpClient, baseURL+RequestServiceGetRequestProcedure, opts...),
		listGroupRequests: connect.NewClient[api.ListGroupRequestsRequest, api.ListGroupRequestsResponse](httpClient, baseURL+RequestServiceListGroupRequestsProcedure, opts...),
		listMyRequests:    connect.NewClient[api.ListMyRequestsRequest, api.ListMyRequestsResponse](httpClient, baseURL+RequestServiceListMyRequestsProcedure, opts...),
		listMyClaims:      connect.NewClient[api.ListMyClaimsRequest, api.ListMyClaimsResponse](httpClient, baseURL+RequestServiceListMyClaimsProcedure, opts...),
		claimRequest:      connect.NewClient[api.ClaimRequestRequest, api.ClaimRequestResponse](httpClient, baseURL+RequestServiceClaimRequestProcedure, opts...),
		unclaimRequest:    connect.NewClient[api.UnclaimRequestRequest, api.UnclaimRequestResponse](httpClient, baseURL+RequestServiceUnclaimRequestProcedure, opts...),
		fulfillRequest:    connect.NewClient[api.FulfillRequestRequest, api.FulfillRequestResponse](httpClient, baseURL+RequestServiceFulfillRequestProcedure, opts...),
		deleteRequest:     connect.NewClient[api.DeleteRequestRequest, api.DeleteRequestResponse](httpClient, baseURL+RequestServiceDeleteRequestProcedure, opts...),
	}
}

type requestServiceClient struct {
	createRequest     *connect.Client[api.CreateRequestRequest, api.CreateRequestResponse]
	updateRequest     *connect.Client[api.UpdateRequestRequest, api.UpdateRequestResponse]
	getRequest        *connect.Client[api.GetRequestRequest, api.GetRequestResponse]
	listGroupRequests *connect.Client[api.ListGroupRequestsRequest, api.ListGroupRequestsResponse]
	listMyRequests    *connect.Client[api.ListMyRequestsRequest, api.ListMyRequestsResponse]
	listMyClaims      *connect.Client[api.ListMyClaimsRequest, api.ListMyClaimsResponse]
	claimRequest      *connect.Client[api.ClaimRequestRequest, api.ClaimRequestResponse]
	unclaimRequest    *connect.Client[api.UnclaimRequestRequest, api.UnclaimRequestResponse]
	fulfillRequest    *connect.Client[api.FulfillRequestRequest, api.FulfillRequestResponse]
	deleteRequest     *connect.Client[api.DeleteRequestRequest, api.DeleteRequestResponse]
}

func (c *requestServiceClient) CreateRequest(ctx context.Context, req *connect.Request[api.CreateRequestRequest]) (*connect.Response[api.CreateRequestResponse], error) {
	return c.createRequest.CallUnary(ctx, req)
}

func (c *requestServiceClient) UpdateRequest(ctx context.Context, req *connect.Request[api.UpdateRequestRequest]) (*connect.Response[api.UpdateRequestResponse], error) {
	return c.updateRequest.CallUnary(ctx, req)
}

func (c *requestServiceClient) GetRequest(ctx context.Context, req *connect.Request[api.GetRequestRequest]) (*connect.Response[api.GetRequestResponse], error) {
	return c.getRequest.CallUnary(ctx, req)
}

func (c *requestServiceClient) ListGroupRequests(ctx context.Context, req *connect.Request[api.ListGroupRequestsRequest]) (*connect.Response[api.ListGroupRequestsResponse], error) {
	return c.listGroupRequests.CallUnary(ctx, req)
}

func (c *requestServiceClient) ListMyRequests(ctx context.Context, req *connect.Request[api.ListMyRequestsRequest]) (*connect.Response[api.ListMyRequestsResponse], error) {
	return c.listMyRequests.CallUnary(ctx, req)
}

func (c *requestServiceClient) ListMyClaims(ctx context.Context, req *connect.Request[api.ListMyClaimsRequest]) (*connect.Response[api.ListMyClaimsResponse], error) {
	return c.listMyClaims.CallUnary(ctx, req)
}

func (c *requestServiceClient) ClaimRequest(ctx context.Context, req *connect.Request[api.ClaimRequestRequest]) (*connect.Response[api.ClaimRequestResponse], error) {
	return c.claimRequest.CallUnary(ctx, req)
}

func (c *requestServiceClient) UnclaimRequest(ctx context.Context, req *connect.Request[api.UnclaimRequestRequest]) (*connect.Response[api.UnclaimRequestResponse], error) {
	return c.unclaimRequest.CallUnary(ctx, req)
}

func (c *requestServiceClient) FulfillRequest(ctx context.Context, req *connect.Request[api.FulfillRequestRequest]) (*connect.Response[api.FulfillRequestResponse], error) {
	return c.fulfillRequest.CallUnary(ctx, req)
}

func (c *requestServiceClient) DeleteRequest(ctx context.Context, req *connect.Request[api.DeleteRequestRequest]) (*connect.Response[api.DeleteRequestResponse], error) {
	return c.deleteRequest.CallUnary(ctx, req)
}
