package payments

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"studyhall/internal/bookings"
	"studyhall/internal/payments/gateway"
	"studyhall/internal/shared/utils/response"
	"studyhall/internal/venues"
	"studyhall/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service       Service
	reconciler    *Reconciler
	webhookSecret string
	logger        *logger.Logger
}

func NewController(service Service, reconciler *Reconciler, webhookSecret string, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Controller{
		service:       service,
		reconciler:    reconciler,
		webhookSecret: webhookSecret,
		logger:        log,
	}
}

// Checkout handles POST /api/v1/checkout
func (ctrl *Controller) Checkout(ctx *gin.Context) {
	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid checkout request", err.Error())
		return
	}

	result, err := ctrl.service.Checkout(ctx.Request.Context(), req)
	if err != nil {
		var conflict *bookings.ConflictError
		switch {
		case errors.As(err, &conflict):
			response.Error(ctx, http.StatusConflict, "Resource is not available for the requested dates", gin.H{
				"resource_id": conflict.ResourceID,
				"conflicts":   conflict.Conflicts,
			})
		case errors.Is(err, venues.ErrResourceNotFound), errors.Is(err, venues.ErrVenueNotFound):
			response.Error(ctx, http.StatusNotFound, err.Error(), nil)
		case errors.Is(err, ErrGatewayUnavailable):
			response.Error(ctx, http.StatusBadGateway, "Payment gateway unavailable, please retry", nil)
		default:
			response.BadRequest(ctx, err.Error(), nil)
		}
		return
	}

	response.Success(ctx, http.StatusCreated, "Checkout created", result)
}

// GetTransaction handles GET /api/v1/payments/:id
func (ctrl *Controller) GetTransaction(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid transaction ID", nil)
		return
	}

	txn, err := ctrl.service.GetTransaction(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			response.Error(ctx, http.StatusNotFound, "Transaction not found", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to get transaction", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Transaction retrieved", txn)
}

type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID          string `json:"order_id"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type ekqrWebhook struct {
	ClientTxnID string `json:"client_txn_id"`
	Status      string `json:"status"`
	Remark      string `json:"remark"`
}

// Webhook handles POST /api/v1/payments/webhook/:gateway
//
// Gateways retry delivery aggressively, so anything that is not a signature
// failure answers 200. Unknown refs and duplicate deliveries are logged and
// acknowledged; finalization itself is idempotent.
func (ctrl *Controller) Webhook(ctx *gin.Context) {
	gatewayName := ctx.Param("gateway")

	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		response.BadRequest(ctx, "Failed to read webhook body", nil)
		return
	}

	var payload WebhookPayload
	switch gatewayName {
	case "razorpay":
		signature := ctx.GetHeader("X-Razorpay-Signature")
		if !gateway.VerifyWebhookSignature(body, signature, ctrl.webhookSecret) {
			response.Error(ctx, http.StatusUnauthorized, "Invalid webhook signature", nil)
			return
		}
		var hook razorpayWebhook
		if err := json.Unmarshal(body, &hook); err != nil {
			response.BadRequest(ctx, "Invalid webhook payload", nil)
			return
		}
		payload.ExternalRef = hook.Payload.Payment.Entity.OrderID
		payload.Reason = hook.Payload.Payment.Entity.ErrorDescription
		switch hook.Event {
		case "payment.captured", "order.paid":
			payload.Status = "success"
		case "payment.failed":
			payload.Status = "failure"
		default:
			// Lifecycle events we do not act on
			response.Success(ctx, http.StatusOK, "Event ignored", nil)
			return
		}
	case "ekqr":
		var hook ekqrWebhook
		if err := json.Unmarshal(body, &hook); err != nil {
			response.BadRequest(ctx, "Invalid webhook payload", nil)
			return
		}
		payload.ExternalRef = hook.ClientTxnID
		payload.Reason = hook.Remark
		switch strings.ToLower(hook.Status) {
		case "success":
			payload.Status = "success"
		case "failure", "failed":
			payload.Status = "failure"
		default:
			response.Success(ctx, http.StatusOK, "Event ignored", nil)
			return
		}
	default:
		response.Error(ctx, http.StatusNotFound, "Unknown gateway", nil)
		return
	}

	ctrl.processWebhook(ctx, payload)
}

func (ctrl *Controller) processWebhook(ctx *gin.Context, payload WebhookPayload) {
	reqCtx := ctx.Request.Context()

	txn, err := ctrl.reconciler.repo.GetByExternalRef(reqCtx, payload.ExternalRef)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			ctrl.logger.InfoWithContext(reqCtx, "webhook for unknown external ref", map[string]interface{}{
				"external_ref": payload.ExternalRef,
			})
			response.Success(ctx, http.StatusOK, "Acknowledged", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to process webhook", nil)
		return
	}

	outcome := OutcomeSuccess
	if payload.Status == "failure" {
		outcome = OutcomeFailure
	}

	result, err := ctrl.reconciler.Finalize(reqCtx, txn.ID, outcome, payload.Reason, SourceWebhook)
	if err != nil {
		var inconsistency *InconsistencyError
		if errors.As(err, &inconsistency) {
			// Logged by the reconciler; the transaction surfaces in the
			// pending list for manual recovery. Still acknowledge so the
			// gateway stops retrying a delivery we have recorded.
			response.Success(ctx, http.StatusOK, "Acknowledged, finalization deferred", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to finalize payment", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Webhook processed", gin.H{
		"transaction_id": result.Transaction.ID,
		"status":         result.Transaction.Status,
		"already_final":  result.AlreadyFinal,
	})
}

// ListPendingTransactions handles GET /api/v1/admin/transactions/pending
func (ctrl *Controller) ListPendingTransactions(ctx *gin.Context) {
	var query PendingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.BadRequest(ctx, "Invalid query parameters", err.Error())
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	txns, total, err := ctrl.service.ListPending(ctx.Request.Context(), query)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list pending transactions", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Pending transactions retrieved", gin.H{
		"transactions": txns,
		"total_count":  total,
		"total_pages":  bookings.CalculateTotalPages(total, query.Limit),
	})
}

// RecoverTransaction handles POST /api/v1/admin/transactions/:id/recover
func (ctrl *Controller) RecoverTransaction(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.BadRequest(ctx, "Invalid transaction ID", nil)
		return
	}

	result, err := ctrl.reconciler.ManualRecover(ctx.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrTransactionNotFound):
			response.Error(ctx, http.StatusNotFound, "Transaction not found", nil)
		case errors.Is(err, ErrAlreadyFinalized):
			response.Error(ctx, http.StatusConflict, "Transaction already finalized", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Recovery failed", err.Error())
		}
		return
	}

	response.Success(ctx, http.StatusOK, "Transaction recovered", result)
}

// RecoverAllTransactions handles POST /api/v1/admin/transactions/recover-all
func (ctrl *Controller) RecoverAllTransactions(ctx *gin.Context) {
	summary, err := ctrl.reconciler.ManualRecoverAll(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Bulk recovery failed", nil)
		return
	}
	response.Success(ctx, http.StatusOK, "Bulk recovery completed", summary)
}

// RunRecoverySweep handles POST /api/v1/admin/transactions/recovery-sweep
func (ctrl *Controller) RunRecoverySweep(ctx *gin.Context) {
	summary, err := ctrl.reconciler.RunRecoverySweep(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Recovery sweep failed", nil)
		return
	}
	response.Success(ctx, http.StatusOK, "Recovery sweep completed", summary)
}
