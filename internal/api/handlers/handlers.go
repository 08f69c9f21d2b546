package handlers

import (
	"github.com/labstack/echo/v4"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/handlers/common"
	"github/chapool/go-batchpay/internal/api/handlers/transaction"
)

func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetReadyRoute(s),
		transaction.GetGasEstimatorRoute(s),
		transaction.GetTransferRoute(s),
		transaction.PostSendCoinRoute(s),
		transaction.PostSendTokenRoute(s),
	}
}
