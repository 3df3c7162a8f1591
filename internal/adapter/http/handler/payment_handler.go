package handler

import (
	"strconv"

	"qrpay-gateway/internal/core/domain"
	"qrpay-gateway/internal/core/ports"
	"qrpay-gateway/pkg/apperror"
	"qrpay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// timeLayout is the timestamp format of the merchant wire protocol.
const timeLayout = "2006-01-02 15:04:05"

// PaymentHandler handles the merchant-facing protocol endpoints.
type PaymentHandler struct {
	orderSvc    ports.OrderService
	reconciler  ports.ReconcileService
	callbackSvc ports.CallbackService
	resolver    ports.CredentialResolver
	pollers     ports.PollerRegistry
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(
	orderSvc ports.OrderService,
	reconciler ports.ReconcileService,
	callbackSvc ports.CallbackService,
	resolver ports.CredentialResolver,
	pollers ports.PollerRegistry,
) *PaymentHandler {
	return &PaymentHandler{
		orderSvc:    orderSvc,
		reconciler:  reconciler,
		callbackSvc: callbackSvc,
		resolver:    resolver,
		pollers:     pollers,
	}
}

// Create handles POST /pay/create. The form is passed through whole:
// signature verification must see every submitted field, including
// extras this gateway does not know about.
func (h *PaymentHandler) Create(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		response.PayError(c, apperror.ErrInvalidParam("form"))
		return
	}

	params := make(map[string]string, len(c.Request.PostForm))
	for k, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	result, err := h.orderSvc.Create(c.Request.Context(), &ports.CreateOrderRequest{
		Params:   params,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.PayError(c, err)
		return
	}

	h.pollers.Start(result.TradeNo)

	response.Pay(c, gin.H{
		"trade_no": result.TradeNo,
		"qrcode":   result.QRCode,
		"money":    result.Amount.String(),
	})
}

// Query handles GET /pay/query, the merchant query API. The act
// parameter selects order detail (act=order) or the merchant snapshot
// (act=query).
func (h *PaymentHandler) Query(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Query("pid"), 10, 64)
	if err != nil {
		response.PayError(c, apperror.ErrInvalidParam("pid"))
		return
	}

	merchant, err := h.orderSvc.AuthMerchant(c.Request.Context(), pid, c.Query("key"))
	if err != nil {
		response.PayError(c, err)
		return
	}

	switch c.Query("act") {
	case "order":
		h.queryOrder(c, merchant)
	case "query":
		h.queryMerchant(c, merchant)
	default:
		response.PayError(c, apperror.ErrInvalidParam("act"))
	}
}

func (h *PaymentHandler) queryOrder(c *gin.Context, merchant *domain.Merchant) {
	ctx := c.Request.Context()

	order, err := h.orderSvc.FindOrder(ctx, merchant.ID, c.Query("trade_no"), c.Query("out_trade_no"))
	if err != nil {
		response.PayError(c, err)
		return
	}

	// Merchants poll this endpoint, so squeeze in a reconcile pass for
	// pending orders. Best effort: a failed pass still returns the order.
	if order.Status == domain.OrderStatusPending {
		if _, err := h.reconciler.CheckPayment(ctx, order.TradeNo); err == nil {
			if fresh, err := h.orderSvc.GetByTradeNo(ctx, order.TradeNo); err == nil {
				order = fresh
			}
		}
	}

	endTime := ""
	if order.PaidAt != nil {
		endTime = order.PaidAt.Format(timeLayout)
	} else if order.ExpiredAt != nil {
		endTime = order.ExpiredAt.Format(timeLayout)
	}

	paid := 0
	if order.Status == domain.OrderStatusPaid {
		paid = 1
	}

	response.Pay(c, gin.H{
		"msg":          "success",
		"trade_no":     order.TradeNo,
		"out_trade_no": order.OutTradeNo,
		"api_trade_no": order.APITradeNo,
		"type":         order.PayType,
		"pid":          order.MerchantID,
		"addtime":      order.CreatedAt.Format(timeLayout),
		"endtime":      endTime,
		"name":         order.Name,
		"money":        order.Amount.String(),
		"status":       paid,
		"param":        order.Param,
		"buyer":        order.Buyer,
	})
}

func (h *PaymentHandler) queryMerchant(c *gin.Context, merchant *domain.Merchant) {
	info, err := h.orderSvc.GetMerchantInfo(c.Request.Context(), merchant.ID)
	if err != nil {
		response.PayError(c, err)
		return
	}

	active := 0
	if info.Merchant.Active {
		active = 1
	}

	response.Pay(c, gin.H{
		"pid":           info.Merchant.ID,
		"key":           info.Merchant.Key,
		"active":        active,
		"money":         info.Stats.Income.String(),
		"type":          info.Merchant.SettleType,
		"account":       info.Merchant.SettleAccount,
		"username":      info.Merchant.SettleUsername,
		"orders":        info.Stats.Orders,
		"order_today":   info.Stats.OrderToday,
		"order_lastday": info.Stats.OrderLastDay,
	})
}

// Status handles GET /pay/status/:trade_no, the unauthenticated status
// probe the pay page polls.
func (h *PaymentHandler) Status(c *gin.Context) {
	order, err := h.orderSvc.GetByTradeNo(c.Request.Context(), c.Param("trade_no"))
	if err != nil {
		response.PayError(c, err)
		return
	}

	response.Pay(c, gin.H{
		"trade_no":    order.TradeNo,
		"status":      int(order.Status),
		"status_text": order.Status.Text(),
	})
}

// Page handles GET /pay/page/:trade_no, the data behind the hosted pay
// page: the QR code to show plus the redirect once the order is paid.
func (h *PaymentHandler) Page(c *gin.Context) {
	ctx := c.Request.Context()

	order, err := h.orderSvc.GetByTradeNo(ctx, c.Param("trade_no"))
	if err != nil {
		response.PayError(c, err)
		return
	}

	qrcode := ""
	if cred, err := h.resolver.ResolveByID(ctx, order.CredentialID); err == nil {
		qrcode = cred.QRCodeURL
	}

	body := gin.H{
		"trade_no": order.TradeNo,
		"name":     order.Name,
		"money":    order.Amount.String(),
		"qrcode":   qrcode,
		"status":   int(order.Status),
	}

	if order.Status == domain.OrderStatusPaid && order.ReturnURL != "" {
		if info, err := h.orderSvc.GetMerchantInfo(ctx, order.MerchantID); err == nil {
			if returnURL, err := h.callbackSvc.BuildReturnURL(order, info.Merchant); err == nil && returnURL != "" {
				body["return_url"] = returnURL
			}
		}
	}

	response.Pay(c, body)
}
