package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"homeserve/internal/config"
	"homeserve/internal/logger"
)

// OrangeRail integrates Orange Money web payments.
type OrangeRail struct {
	baseURL      string
	clientID     string
	clientSecret string
	merchantKey  string
	client       *http.Client
}

func NewOrangeRail(cfg *config.Config, client *http.Client) *OrangeRail {
	return &OrangeRail{
		baseURL:      cfg.OrangeBaseURL,
		clientID:     cfg.OrangeClientID,
		clientSecret: cfg.OrangeClientSecret,
		merchantKey:  cfg.OrangeMerchantKey,
		client:       client,
	}
}

func (o *OrangeRail) Name() string { return RailOrange }

func (o *OrangeRail) token(ctx context.Context) (string, error) {
	if o.clientID == "" || o.clientSecret == "" {
		return "", newError(RailOrange, KindConfig, "token", errors.New("client credentials not configured"))
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/oauth/v3/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", newError(RailOrange, KindTransient, "token", err)
	}
	req.SetBasicAuth(o.clientID, o.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", newError(RailOrange, KindTransient, "token", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(RailOrange, KindTransient, "token", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", newError(RailOrange, KindTransient, "token",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body))
	}

	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return "", newError(RailOrange, KindTransient, "token", errors.New("empty access token"))
	}
	return token, nil
}

// RequestCollection opens a web payment session. The returned pay_token is
// the vendor transaction id needed for status checks.
func (o *OrangeRail) RequestCollection(ctx context.Context, req CollectionRequest) (*CollectionResponse, error) {
	token, err := o.token(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"merchant_key": o.merchantKey,
		"currency":     req.Currency,
		"order_id":     req.Reference,
		"amount":       strconv.FormatInt(req.Amount, 10),
		"reference":    req.Reference,
		"lang":         "en",
		"return_url":   req.CallbackURL,
		"cancel_url":   req.CallbackURL,
		"notif_url":    req.CallbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(RailOrange, KindTransient, "webpayment", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/orange-money-webpay/cm/v1/webpayment", strings.NewReader(string(body)))
	if err != nil {
		return nil, newError(RailOrange, KindTransient, "webpayment", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, newError(RailOrange, KindTransient, "webpayment", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(RailOrange, KindTransient, "webpayment", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		kind := KindRejected
		if resp.StatusCode >= 500 {
			kind = KindTransient
		}
		return nil, newError(RailOrange, kind, "webpayment",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBody))
	}

	payToken := gjson.GetBytes(respBody, "pay_token").String()
	if payToken == "" {
		return nil, newError(RailOrange, KindRejected, "webpayment", errors.New("missing pay_token"))
	}

	logger.Info("collection requested", "rail", RailOrange, "reference", req.Reference, "vendor_id", payToken)
	return &CollectionResponse{VendorTransactionID: payToken, RawStatus: "PENDING", Raw: respBody}, nil
}

func (o *OrangeRail) FetchStatus(ctx context.Context, reference, vendorID string) (*StatusResult, error) {
	token, err := o.token(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"order_id":  reference,
		"pay_token": vendorID,
	})
	if err != nil {
		return nil, newError(RailOrange, KindTransient, "transactionstatus", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/orange-money-webpay/cm/v1/transactionstatus", strings.NewReader(string(payload)))
	if err != nil {
		return nil, newError(RailOrange, KindTransient, "transactionstatus", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, newError(RailOrange, KindTransient, "transactionstatus", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(RailOrange, KindTransient, "transactionstatus", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(RailOrange, KindTransient, "transactionstatus",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body))
	}

	raw := gjson.GetBytes(body, "status").String()
	return &StatusResult{
		Status:    NormalizeOrangeStatus(raw),
		RawStatus: raw,
	}, nil
}
