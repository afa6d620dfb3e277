package payment

import (
	"context"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// NativeSDKDriver charges a card the mobile SDK has already tokenized. In
// runtime hosts without a gateway key (development shells, CI) the SDK is
// unavailable and the driver says so, letting the orchestrator offer a
// fallback instead of a dead end.
type NativeSDKDriver struct {
	core      *coreapi.Client
	serverKey string
}

func NewNativeSDKDriver(client *coreapi.Client, serverKey string) *NativeSDKDriver {
	return &NativeSDKDriver{core: client, serverKey: serverKey}
}

func (d *NativeSDKDriver) Kind() Kind { return KindNativeSDK }

func (d *NativeSDKDriver) Initiate(ctx context.Context, req Request, cb Callbacks) error {
	if d.serverKey == "" {
		cb.OnFailure(Failure{Reason: ReasonUnavailable, Detail: "payment SDK is not available in this host"})
		return nil
	}
	if req.CardToken == "" {
		cb.OnFailure(Failure{Reason: ReasonValidation, Detail: "card token required"})
		return nil
	}

	go func() {
		if ctx.Err() != nil {
			cb.OnFailure(Failure{Reason: ReasonCancelled, Detail: "payment was cancelled"})
			return
		}

		chargeReq := &coreapi.ChargeReq{
			PaymentType: coreapi.PaymentTypeCreditCard,
			TransactionDetails: midtrans.TransactionDetails{
				OrderID:  req.OrderRef,
				GrossAmt: req.Amount.Round(0).IntPart(),
			},
			CreditCard: &coreapi.CreditCardDetails{
				TokenID: req.CardToken,
			},
			CustomerDetails: &midtrans.CustomerDetails{
				FName: req.Buyer.Name,
				Email: req.Buyer.Email,
				Phone: req.Buyer.Phone,
			},
		}

		resp, chargeErr := d.core.ChargeTransaction(chargeReq)
		if chargeErr != nil {
			cb.OnFailure(Failure{Reason: ReasonProviderError, Detail: chargeErr.Message})
			return
		}

		switch resp.TransactionStatus {
		case "settlement":
			cb.OnSuccess(resp.TransactionID)
		case "capture":
			if resp.FraudStatus == "accept" {
				cb.OnSuccess(resp.TransactionID)
			} else {
				cb.OnFailure(Failure{Reason: ReasonDeclined, Detail: "held for fraud review"})
			}
		case "deny", "cancel", "expire":
			cb.OnFailure(Failure{Reason: ReasonDeclined, Detail: resp.StatusMessage})
		default:
			cb.OnFailure(Failure{Reason: ReasonProviderError, Detail: "unexpected transaction status " + resp.TransactionStatus})
		}
	}()

	return nil
}
