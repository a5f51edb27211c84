package api

import (
	"encoding/json"
	"io"
	"net/http"

	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/plan"
	"reminderpro/reminder-api/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// BillingWebhook consumes Stripe's event feed. Only two events matter to
// us: a paid invoice marks the pending payment row paid, and a deleted
// subscription downgrades the user back to the free tier.
func (a *API) BillingWebhook(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Can't read request body",
			"requestID": requestID,
		})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), viper.GetString("stripe.webhook_secret"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid webhook signature",
			"requestID": requestID,
		})

		zap.L().Warn("Rejected webhook event", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	switch string(event.Type) {
	case "invoice.paid":
		err = a.handleInvoicePaid(event)
	case "customer.subscription.deleted":
		err = a.handleSubscriptionDeleted(event)
	default:
		zap.L().Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
	}

	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to process webhook event", zap.Error(err), zap.String("type", string(event.Type)), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
	})
}

func (a *API) handleInvoicePaid(event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return err
	}

	if invoice.PaymentIntent == nil {
		return nil
	}

	payment, err := a.Store.PaymentByStripePaymentID(invoice.PaymentIntent.ID)
	if err != nil {
		return err
	}

	if payment == nil {
		zap.L().Warn("Paid invoice doesn't match any payment row", zap.String("payment_intent", invoice.PaymentIntent.ID))
		return nil
	}

	paid := true
	_, err = a.Store.UpdatePayment(payment.ID, store.PaymentUpdate{IsPaid: &paid})
	return err
}

func (a *API) handleSubscriptionDeleted(event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}

	user, err := a.Store.UserByStripeSubscriptionID(sub.ID)
	if err != nil {
		return err
	}

	if user == nil {
		zap.L().Warn("Deleted subscription doesn't match any user", zap.String("subscription", sub.ID))
		return nil
	}

	freeType := model.PlanFree
	freeLimit := plan.LimitFor(model.PlanFree)

	_, err = a.Store.UpdateUser(user.ID, store.UserUpdate{
		PlanType:          &freeType,
		ReminderLimit:     &freeLimit,
		ClearSubscription: true,
	})

	if err == nil {
		zap.L().Info("Downgraded user after subscription cancellation", zap.String("userID", user.ID))
	}

	return err
}
