package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/util"
)

// 521 signals the upstream is not ready to load balancers
const statusNotReady = 521

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// Readiness check
// This endpoint returns 200 when our Service is ready to serve traffic (i.e. respond to queries).
// Does read-only probes apart from the general server ready state.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		if !s.Ready() {
			log.Warn().Msg("Readiness probe failed, server is not fully initialized")
			return c.String(statusNotReady, "Not ready.")
		}

		if errs := ProbeReadiness(ctx, s.Receipts, s.Config.Management.ReadinessTimeout); len(errs) > 0 {
			log.Warn().Errs("errs", errs).Msg("Readiness probe failed")
			return c.String(statusNotReady, "Not ready.")
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
