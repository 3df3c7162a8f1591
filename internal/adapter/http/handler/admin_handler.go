package handler

import (
	"net/http"
	"strconv"

	"qrpay-gateway/internal/adapter/http/dto"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/apperror"
	"qrpay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles the ops-API endpoints.
type AdminHandler struct {
	adminSvc    ports.AdminService
	orderSvc    ports.OrderService
	callbackSvc ports.CallbackService
	reconciler  ports.ReconcileService
	pollers     ports.PollerRegistry
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	adminSvc ports.AdminService,
	orderSvc ports.OrderService,
	callbackSvc ports.CallbackService,
	reconciler ports.ReconcileService,
	pollers ports.PollerRegistry,
) *AdminHandler {
	return &AdminHandler{
		adminSvc:    adminSvc,
		orderSvc:    orderSvc,
		callbackSvc: callbackSvc,
		reconciler:  reconciler,
		pollers:     pollers,
	}
}

// Login handles POST /admin/login. The password is not sanitized:
// escaping would silently change it before the hash compare.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	token, err := h.adminSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{Token: token})
}

// CreateMerchant handles POST /admin/merchants.
func (h *AdminHandler) CreateMerchant(c *gin.Context) {
	var req dto.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.adminSvc.CreateMerchant(c.Request.Context(),
		req.Username, req.SettleType, req.SettleAccount, req.SettleUsername)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToMerchantResponse(merchant))
}

// ListMerchants handles GET /admin/merchants.
func (h *AdminHandler) ListMerchants(c *gin.Context) {
	merchants, err := h.adminSvc.ListMerchants(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.MerchantResponse, 0, len(merchants))
	for _, m := range merchants {
		out = append(out, dto.ToMerchantResponse(m))
	}
	response.OK(c, out)
}

// RotateKey handles POST /admin/merchants/:pid/rotate-key.
func (h *AdminHandler) RotateKey(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 64)
	if err != nil {
		response.Error(c, apperror.ErrInvalidParam("pid"))
		return
	}

	key, err := h.adminSvc.RotateMerchantKey(c.Request.Context(), pid)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RotateKeyResponse{Key: key})
}

// SetActive handles POST /admin/merchants/:pid/active.
func (h *AdminHandler) SetActive(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 64)
	if err != nil {
		response.Error(c, apperror.ErrInvalidParam("pid"))
		return
	}

	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.adminSvc.SetMerchantActive(c.Request.Context(), pid, *req.Active); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"pid": pid, "active": *req.Active})
}

// CreateCredential handles POST /admin/credentials. No sanitization:
// the body carries PEM key material that must arrive byte-exact.
func (h *AdminHandler) CreateCredential(c *gin.Context) {
	var req dto.CreateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	cred, err := h.adminSvc.CreateCredential(c.Request.Context(), &ports.CreateCredentialRequest{
		MerchantID: req.MerchantID,
		AppID:      req.AppID,
		PublicKey:  req.PublicKey,
		PrivateKey: req.PrivateKey,
		QRCodeURL:  req.QRCodeURL,
		SkipVerify: req.SkipVerify,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, cred)
}

// ListCredentials handles GET /admin/credentials?merchant_id=N.
func (h *AdminHandler) ListCredentials(c *gin.Context) {
	var merchantID int64
	if raw := c.Query("merchant_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, apperror.ErrInvalidParam("merchant_id"))
			return
		}
		merchantID = id
	}

	creds, err := h.adminSvc.ListCredentials(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, creds)
}

// Renotify handles POST /admin/orders/:trade_no/notify, a manual
// synchronous callback attempt.
func (h *AdminHandler) Renotify(c *gin.Context) {
	order, err := h.callbackSvc.Notify(c.Request.Context(), c.Param("trade_no"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NotifyResponse{
		TradeNo:          order.TradeNo,
		CallbackStatus:   int(order.CallbackStatus),
		CallbackAttempts: order.CallbackAttempts,
	})
}

// CancelOrder handles POST /admin/orders/:trade_no/cancel. A cancelled
// order shrinks the pending set, so the credential is rebased like any
// other expiry.
func (h *AdminHandler) CancelOrder(c *gin.Context) {
	tradeNo := c.Param("trade_no")

	order, err := h.orderSvc.Cancel(c.Request.Context(), tradeNo)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.pollers.Cancel(tradeNo)
	h.reconciler.RebaseAfterExpiry(c.Request.Context(), []int64{order.CredentialID})

	response.OK(c, dto.CancelResponse{TradeNo: tradeNo, Status: "expired"})
}

// BalanceLogs handles GET /admin/balance-logs?credential_id=N&limit=N.
func (h *AdminHandler) BalanceLogs(c *gin.Context) {
	var credentialID int64
	if raw := c.Query("credential_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, apperror.ErrInvalidParam("credential_id"))
			return
		}
		credentialID = id
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, apperror.ErrInvalidParam("limit"))
			return
		}
		limit = n
	}

	logs, err := h.adminSvc.ListBalanceLogs(c.Request.Context(), credentialID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, logs)
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
