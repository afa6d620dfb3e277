package midtrans

import (
	"crypto/sha512"
	"encoding/hex"
	"os"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// ServerKey returns the configured gateway key. Empty means the gateway is
// unavailable in this runtime host (drivers must report that, not panic).
func ServerKey() string {
	return os.Getenv("MIDTRANS_SERVER_KEY")
}

// NewSnapClient builds the hosted-checkout client. Snap pages are where the
// buyer completes payment in a webview, off-process.
func NewSnapClient() *snap.Client {
	var client snap.Client

	client.New(
		ServerKey(),
		midtrans.Sandbox,
	)

	return &client
}

// NewCoreClient builds the direct-charge client used by the native-SDK flow,
// where the mobile SDK tokenizes the card and the charge happens server side.
func NewCoreClient() *coreapi.Client {
	var client coreapi.Client

	client.New(
		ServerKey(),
		midtrans.Sandbox,
	)

	return &client
}

// VerifySignature checks the signature the gateway attaches to its
// return/notification calls: sha512(orderID + statusCode + grossAmount + serverKey).
func VerifySignature(
	orderID string,
	statusCode string,
	grossAmount string,
	signature string,
	serverKey string,
) bool {

	raw := orderID + statusCode + grossAmount + serverKey
	hash := sha512.Sum512([]byte(raw))
	expected := hex.EncodeToString(hash[:])

	return expected == signature
}
