package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions configures SetupRouter.
type RouterOptions struct {
	// AllowedOrigins lists CORS origins. Empty allows all.
	AllowedOrigins []string
	Logger         *zap.Logger
}

// SetupRouter builds the gin engine exposing the wallet API under /api/v1.
func SetupRouter(h *WalletHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	if opts.Logger != nil {
		router.Use(ZapLoggerMiddleware(opts.Logger))
	}
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/session", h.InitSession)
		v1.GET("/chains", h.ListChains)

		v1.GET("/wallet/status", h.WalletStatus)
		v1.GET("/wallet/address/:chain", h.WalletAddress)
		v1.POST("/wallet", h.CreateWallet)
		v1.POST("/wallet/backup", h.BackupWallet)
		v1.POST("/wallet/recover", h.RecoverWallet)

		v1.GET("/balances", h.SnapshotAll)
		v1.GET("/balances/:chain", h.GetBalances)

		v1.POST("/transfers", h.CreateTransfer)
		v1.POST("/transfers/pyusd", h.SendPYUSD)
		v1.GET("/transfers/:chain/:hash", h.TransferStatus)

		v1.POST("/fund", h.FundTestWallet)
	}

	return router
}
