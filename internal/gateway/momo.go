package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"homeserve/internal/config"
	"homeserve/internal/logger"
)

// MomoRail integrates MTN Mobile Money collections.
type MomoRail struct {
	baseURL         string
	subscriptionKey string
	apiUser         string
	apiKey          string
	targetEnv       string
	client          *http.Client
}

func NewMomoRail(cfg *config.Config, client *http.Client) *MomoRail {
	return &MomoRail{
		baseURL:         cfg.MomoBaseURL,
		subscriptionKey: cfg.MomoSubscriptionKey,
		apiUser:         cfg.MomoAPIUser,
		apiKey:          cfg.MomoAPIKey,
		targetEnv:       cfg.MomoTargetEnv,
		client:          client,
	}
}

func (m *MomoRail) Name() string { return RailMomo }

func (m *MomoRail) token(ctx context.Context) (string, error) {
	if m.apiUser == "" || m.apiKey == "" {
		return "", newError(RailMomo, KindConfig, "token", errors.New("api credentials not configured"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/collection/token/", nil)
	if err != nil {
		return "", newError(RailMomo, KindTransient, "token", err)
	}
	req.SetBasicAuth(m.apiUser, m.apiKey)
	req.Header.Set("Ocp-Apim-Subscription-Key", m.subscriptionKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", newError(RailMomo, KindTransient, "token", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(RailMomo, KindTransient, "token", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", newError(RailMomo, KindTransient, "token",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body))
	}

	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return "", newError(RailMomo, KindTransient, "token", errors.New("empty access token"))
	}
	return token, nil
}

// RequestCollection issues a requesttopay. The generated X-Reference-Id is
// returned as the vendor transaction id and is what status polls key on.
func (m *MomoRail) RequestCollection(ctx context.Context, req CollectionRequest) (*CollectionResponse, error) {
	token, err := m.token(ctx)
	if err != nil {
		return nil, err
	}

	vendorID := uuid.NewString()
	payload := map[string]interface{}{
		"amount":     strconv.FormatInt(req.Amount, 10),
		"currency":   req.Currency,
		"externalId": req.Reference,
		"payer": map[string]string{
			"partyIdType": "MSISDN",
			"partyId":     req.PhoneNumber,
		},
		"payerMessage": req.Description,
		"payeeNote":    req.Reference,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(RailMomo, KindTransient, "requesttopay", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/collection/v1_0/requesttopay", bytes.NewReader(body))
	if err != nil {
		return nil, newError(RailMomo, KindTransient, "requesttopay", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("X-Reference-Id", vendorID)
	httpReq.Header.Set("X-Target-Environment", m.targetEnv)
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", m.subscriptionKey)
	httpReq.Header.Set("X-Callback-Url", req.CallbackURL)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, newError(RailMomo, KindTransient, "requesttopay", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusAccepted {
		kind := KindRejected
		if resp.StatusCode >= 500 {
			kind = KindTransient
		}
		return nil, newError(RailMomo, kind, "requesttopay",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBody))
	}

	// requesttopay acknowledges with an empty 202, so the audit record is
	// the reference id the vendor will key everything on.
	if len(respBody) == 0 {
		respBody = []byte(fmt.Sprintf(`{"referenceId":%q}`, vendorID))
	}

	logger.Info("collection requested", "rail", RailMomo, "reference", req.Reference, "vendor_id", vendorID)
	return &CollectionResponse{VendorTransactionID: vendorID, RawStatus: "PENDING", Raw: respBody}, nil
}

func (m *MomoRail) FetchStatus(ctx context.Context, reference, vendorID string) (*StatusResult, error) {
	token, err := m.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		m.baseURL+"/collection/v1_0/requesttopay/"+vendorID, nil)
	if err != nil {
		return nil, newError(RailMomo, KindTransient, "status", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Target-Environment", m.targetEnv)
	req.Header.Set("Ocp-Apim-Subscription-Key", m.subscriptionKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, newError(RailMomo, KindTransient, "status", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(RailMomo, KindTransient, "status", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(RailMomo, KindTransient, "status",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body))
	}

	raw := gjson.GetBytes(body, "status").String()
	return &StatusResult{
		Status:    NormalizeMomoStatus(raw),
		RawStatus: raw,
		Reason:    gjson.GetBytes(body, "reason.message").String(),
	}, nil
}
