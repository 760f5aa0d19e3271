package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/mutualaid/internal/app"
	"github.com/mmynk/mutualaid/internal/auth"
	"github.com/mmynk/mutualaid/internal/middleware"
	"github.com/mmynk/mutualaid/pkg/api/apiconnect"
)

// PublicProcedures may be called without a bearer token.
var PublicProcedures = []string{
	apiconnect.AuthServiceRegisterProcedure,
	apiconnect.AuthServiceLoginProcedure,
	apiconnect.GroupServiceValidateInviteProcedure,
}

// Route is one service handler and the path prefix it serves.
type Route struct {
	Path    string
	Handler http.Handler
}

// Routes builds the four Connect services over a, with the metrics, auth
// and logging interceptors installed in that order.
func Routes(a *app.App, authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) []Route {
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(a.Metrics),
		middleware.RequireAuth(jwtManager, PublicProcedures...),
		middleware.LoggingInterceptor(),
	)

	var routes []Route
	add := func(path string, h http.Handler) {
		routes = append(routes, Route{Path: path, Handler: h})
	}
	add(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, a.Store, logger), interceptors))
	add(apiconnect.NewGroupServiceHandler(NewGroupService(a.Members), interceptors))
	add(apiconnect.NewRequestServiceHandler(NewRequestService(a.Requests), interceptors))
	add(apiconnect.NewLimitsServiceHandler(NewLimitsService(a.Quota), interceptors))
	return routes
}
