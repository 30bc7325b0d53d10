package momo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Sign returns hex(HMAC-SHA256(secretKey, raw)).
func Sign(secretKey, raw string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// joinPairs renders k=v pairs joined by '&' in the given order. Values are
// not escaped; the gateway signs the raw text.
func joinPairs(pairs [][2]string) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(p[1])
	}
	return b.String()
}

// createRaw is the exact text the gateway signs for a create request. Keys
// are in the gateway's fixed alphabetical order.
func createRaw(accessKey string, body createBody) string {
	return joinPairs([][2]string{
		{"accessKey", accessKey},
		{"amount", body.Amount},
		{"extraData", body.ExtraData},
		{"ipnUrl", body.IpnURL},
		{"orderId", body.OrderID},
		{"orderInfo", body.OrderInfo},
		{"partnerCode", body.PartnerCode},
		{"redirectUrl", body.RedirectURL},
		{"requestId", body.RequestID},
		{"requestType", body.RequestType},
	})
}

// ipnRaw is the exact text the gateway signs on a payment notification.
func ipnRaw(accessKey string, n IPN) string {
	return joinPairs([][2]string{
		{"accessKey", accessKey},
		{"amount", strconv.FormatInt(n.Amount, 10)},
		{"extraData", n.ExtraData},
		{"message", n.Message},
		{"orderId", n.OrderID},
		{"orderInfo", n.OrderInfo},
		{"orderType", n.OrderType},
		{"partnerCode", n.PartnerCode},
		{"payType", n.PayType},
		{"requestId", n.RequestID},
		{"responseTime", strconv.FormatInt(n.ResponseTime, 10)},
		{"resultCode", strconv.Itoa(n.ResultCode)},
		{"transId", strconv.FormatInt(n.TransID, 10)},
	})
}
