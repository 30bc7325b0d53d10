// Package momo is a client for the MoMo-style wallet gateway: signed
// "create payment" requests and verification of the asynchronous payment
// notifications (IPN) the gateway posts back.
package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// RequestTypeCaptureWallet is the only request type this client issues.
const RequestTypeCaptureWallet = "captureWallet"

// Config holds merchant credentials and endpoints.
type Config struct {
	PartnerCode string
	PartnerName string
	StoreID     string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	RedirectURL string
	IPNURL      string
	Timeout     time.Duration
}

// PaymentRequest is what the caller supplies for one charge.
type PaymentRequest struct {
	OrderID   string
	RequestID string
	Amount    int64
	OrderInfo string
	ExtraData string
}

type createBody struct {
	PartnerCode string `json:"partnerCode"`
	PartnerName string `json:"partnerName"`
	StoreID     string `json:"storeId"`
	RequestID   string `json:"requestId"`
	Amount      string `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	Lang        string `json:"lang"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	AutoCapture bool   `json:"autoCapture"`
}

// PaymentResponse is the gateway's answer to a create request.
type PaymentResponse struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	ResponseTime int64  `json:"responseTime"`
	Message      string `json:"message"`
	ResultCode   int    `json:"resultCode"`
	PayURL       string `json:"payUrl"`
	Deeplink     string `json:"deeplink,omitempty"`
	QRCodeURL    string `json:"qrCodeUrl,omitempty"`
}

// IPN is the payment notification body posted by the gateway.
type IPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// Succeeded reports a successful payment result.
func (n IPN) Succeeded() bool { return n.ResultCode == 0 }

// ErrRejected wraps a create request the gateway answered with a non-zero
// result code or without a pay URL.
var ErrRejected = errors.New("gateway rejected the request")

// Client talks to the gateway. Transport failures trip a circuit breaker so
// an unreachable gateway fails fast.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "momo-create",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		}),
	}
}

// CreatePayment signs and sends a captureWallet request and returns the
// gateway's response. A response without a pay URL is ErrRejected.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	body := createBody{
		PartnerCode: c.cfg.PartnerCode,
		PartnerName: c.cfg.PartnerName,
		StoreID:     c.cfg.StoreID,
		RequestID:   req.RequestID,
		Amount:      strconv.FormatInt(req.Amount, 10),
		OrderID:     req.OrderID,
		OrderInfo:   req.OrderInfo,
		RedirectURL: c.cfg.RedirectURL,
		IpnURL:      c.cfg.IPNURL,
		Lang:        "vi",
		ExtraData:   req.ExtraData,
		RequestType: RequestTypeCaptureWallet,
		AutoCapture: true,
	}
	body.Signature = Sign(c.cfg.SecretKey, createRaw(c.cfg.AccessKey, body))

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("gateway status %d", resp.StatusCode)
		}
		var pr PaymentResponse
		if err := json.Unmarshal(raw, &pr); err != nil {
			return nil, fmt.Errorf("decode gateway response (status %d): %w", resp.StatusCode, err)
		}
		return &pr, nil
	})
	if err != nil {
		return nil, err
	}
	pr := out.(*PaymentResponse)
	if pr.ResultCode != 0 || pr.PayURL == "" {
		return pr, fmt.Errorf("%w: code %d: %s", ErrRejected, pr.ResultCode, pr.Message)
	}
	return pr, nil
}

// VerifyIPN checks the notification signature in constant time.
func (c *Client) VerifyIPN(n IPN) bool {
	want := Sign(c.cfg.SecretKey, ipnRaw(c.cfg.AccessKey, n))
	return hmac.Equal([]byte(want), []byte(n.Signature))
}

// SignIPN fills in the signature of a notification. The gateway does this on
// its side; it is exposed for tests and local simulations.
func (c *Client) SignIPN(n IPN) IPN {
	n.Signature = Sign(c.cfg.SecretKey, ipnRaw(c.cfg.AccessKey, n))
	return n
}
