package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daccred/warupay/handlers"
	"github.com/daccred/warupay/models"
)

// AssetService is the part of handlers.Service the HTTP surface uses.
type AssetService interface {
	Fund(ctx context.Context, req models.FundRequest) (*models.OperationResult, error)
	Transfer(ctx context.Context, req models.TransferRequest) (*models.OperationResult, error)
	BalanceQuery(ctx context.Context, req models.BalanceRequest) (*models.BalanceResult, error)
	AssetInfo() models.AssetInfo
	Stats() models.Stats
	Ping(ctx context.Context) error
}

type OperationsController struct {
	service AssetService
}

func NewOperationsController(service AssetService) *OperationsController {
	return &OperationsController{service: service}
}

func (oc *OperationsController) RegisterRoutes(r *gin.Engine) {
	store := persistence.NewInMemoryStore(time.Minute)

	r.GET("/health", oc.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/fund", oc.Fund)
		v1.POST("/transfer", oc.Transfer)
		v1.POST("/balance", oc.Balance)
		v1.GET("/accounts/:accountId/balance", oc.AccountBalance)
		v1.GET("/asset", cache.CachePage(store, time.Minute, oc.GetAsset))
		v1.GET("/stats", cache.CachePage(store, 10*time.Second, oc.GetStats))
	}
}

func (oc *OperationsController) HealthCheck(c *gin.Context) {
	if err := oc.service.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "Ledger endpoint unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (oc *OperationsController) Fund(c *gin.Context) {
	var req models.FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		oc.badRequest(c, "destinationAccountId and amount are required")
		return
	}
	res, err := oc.service.Fund(c.Request.Context(), req)
	if err != nil {
		oc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (oc *OperationsController) Transfer(c *gin.Context) {
	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		oc.badRequest(c, "destinationAccountId and amount are required")
		return
	}
	res, err := oc.service.Transfer(c.Request.Context(), req)
	if err != nil {
		oc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (oc *OperationsController) Balance(c *gin.Context) {
	var req models.BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		oc.badRequest(c, "accountId is required")
		return
	}
	oc.balance(c, req)
}

func (oc *OperationsController) AccountBalance(c *gin.Context) {
	oc.balance(c, models.BalanceRequest{AccountID: c.Param("accountId")})
}

func (oc *OperationsController) balance(c *gin.Context, req models.BalanceRequest) {
	res, err := oc.service.BalanceQuery(c.Request.Context(), req)
	if err != nil {
		oc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (oc *OperationsController) GetAsset(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": oc.service.AssetInfo()})
}

func (oc *OperationsController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": oc.service.Stats()})
}

func (oc *OperationsController) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{
		"code":    handlers.InvalidArgument.String(),
		"message": message,
	}})
}

var kindStatus = map[handlers.Kind]int{
	handlers.InvalidArgument:        http.StatusBadRequest,
	handlers.ConfigurationError:     http.StatusInternalServerError,
	handlers.AccountNotFound:        http.StatusNotFound,
	handlers.MissingTrustline:       http.StatusPreconditionFailed,
	handlers.TransientLedgerFailure: http.StatusServiceUnavailable,
	handlers.LedgerRejection:        http.StatusUnprocessableEntity,
}

// fail writes the uniform error body. Messages come from the tagged error
// only; wrapped causes and configuration details stay in the server logs.
func (oc *OperationsController) fail(c *gin.Context, err error) {
	kind := handlers.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := gin.H{"code": kind.String(), "message": "Internal error"}
	var tagged *handlers.Error
	if errors.As(err, &tagged) {
		body["message"] = tagged.Message
		if kind == handlers.InvalidArgument && tagged.Err != nil {
			body["message"] = tagged.Message + ": " + tagged.Err.Error()
		}
		if tagged.ResultCodes != nil {
			body["resultCodes"] = tagged.ResultCodes
		}
	}
	if kind == handlers.ConfigurationError {
		body["message"] = "Service is not configured for this operation"
	}
	c.JSON(status, gin.H{"success": false, "error": body})
}
