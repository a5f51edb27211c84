package api

import (
	"fmt"
	"net/http"

	"reminderpro/reminder-api/model"
	"reminderpro/reminder-api/plan"
	"reminderpro/reminder-api/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/subscription"
	"go.uber.org/zap"
)

// BillingSubscribe upgrades the caller to pro: it creates (or reuses) the
// Stripe customer, opens an incomplete subscription and records a pending
// payment row. The client finishes the payment with the returned secret;
// the webhook marks the payment paid.
func (a *API) BillingSubscribe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	if user.StripeSubscriptionID != nil && user.PlanType == model.PlanPro {
		c.JSON(http.StatusOK, gin.H{
			"message":       "Already subscribed",
			"is_subscribed": true,
		})
		return
	}

	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}

	if customerID == "" {
		params := &stripe.CustomerParams{
			Email: stripe.String(user.Email),
			Name:  stripe.String(user.FullName),
		}
		params.AddMetadata("user_id", user.ID)

		cust, err := customer.New(params)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to create stripe customer", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		customerID = cust.ID

		if _, err := a.Store.UpdateUser(user.ID, store.UserUpdate{StripeCustomerID: &customerID}); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to save stripe customer id", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	subParams := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(viper.GetString("stripe.price_id"))},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	subParams.AddExpand("latest_invoice.payment_intent")

	sub, err := subscription.New(subParams)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create stripe subscription", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	proType := model.PlanPro
	proLimit := plan.LimitFor(model.PlanPro)

	_, err = a.Store.UpdateUser(user.ID, store.UserUpdate{
		PlanType:             &proType,
		ReminderLimit:        &proLimit,
		StripeCustomerID:     &customerID,
		StripeSubscriptionID: &sub.ID,
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save subscription info", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	invoice := sub.LatestInvoice
	if invoice == nil || invoice.PaymentIntent == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Subscription came back without a payment intent", zap.String("requestID", requestID))
		return
	}

	payment := &model.Payment{
		UserID:          user.ID,
		Amount:          float64(invoice.AmountDue) / 100,
		PlanType:        model.PlanPro,
		IsPaid:          false,
		StripePaymentID: stripe.String(invoice.PaymentIntent.ID),
	}

	if err := a.Store.CreatePayment(payment); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to record payment", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	zap.L().Info("Subscription created",
		zap.String("userID", user.ID),
		zap.String("subscription", sub.ID),
		zap.String("amount", fmt.Sprintf("%.2f", payment.Amount)),
	)

	c.JSON(http.StatusOK, gin.H{
		"subscription_id": sub.ID,
		"client_secret":   invoice.PaymentIntent.ClientSecret,
	})
}
