package common

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/util"
)

const QueryParamManagementSecret = "mgmt-secret"

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// Health check
// Returns an analysis of the most important probes.
// Guarded by the management secret as the output reveals internals.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret := c.QueryParam(QueryParamManagementSecret)
		if subtle.ConstantTimeCompare([]byte(secret), []byte(s.Config.Management.Secret)) != 1 {
			return echo.ErrUnauthorized
		}

		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var b strings.Builder
		healthy := s.Ready()

		fmt.Fprintf(&b, "Ready: %t\n", healthy)

		errs := ProbeReadiness(ctx, s.Receipts, s.Config.Management.LivenessTimeout)
		for _, err := range errs {
			fmt.Fprintf(&b, "Probe error: %v\n", err)
		}
		if len(errs) > 0 {
			healthy = false
		}

		if !healthy {
			log.Warn().Errs("errs", errs).Msg("Health check failed")
			return c.String(statusNotReady, b.String())
		}

		b.WriteString("Probes succeeded.")

		return c.String(http.StatusOK, b.String())
	}
}
