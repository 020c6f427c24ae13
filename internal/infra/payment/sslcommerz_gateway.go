package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/ports/adapter"
)

// SSLCommerzGateway implements the payment port against the SSLCommerz
// session and validation APIs using direct HTTP calls.
type SSLCommerzGateway struct {
	storeID       string
	storePassword string
	baseURL       string
	client        *http.Client
}

var _ adapter.PaymentGateway = (*SSLCommerzGateway)(nil)

// NewSSLCommerzGateway creates a gateway bound to one store. baseURL is the
// environment root, e.g. https://sandbox.sslcommerz.com.
func NewSSLCommerzGateway(storeID, storePassword, baseURL string) *SSLCommerzGateway {
	return &SSLCommerzGateway{
		storeID:       storeID,
		storePassword: storePassword,
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *SSLCommerzGateway) Name() string { return "sslcommerz" }

// sessionResponse is the answer of the v4 session API.
type sessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// InitiateCheckout opens a checkout session and returns the hosted page URL.
func (g *SSLCommerzGateway) InitiateCheckout(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	form := url.Values{}
	form.Set("store_id", g.storeID)
	form.Set("store_passwd", g.storePassword)
	form.Set("total_amount", fmt.Sprintf("%d.00", req.Amount))
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TransactionID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("ipn_url", req.IPNURL)
	form.Set("product_name", req.Description)
	form.Set("product_category", "subscription")
	form.Set("product_profile", "non-physical-goods")
	form.Set("shipping_method", "NO")
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_add1", "n/a")
	form.Set("cus_city", "n/a")
	form.Set("cus_country", "Bangladesh")
	form.Set("cus_phone", "n/a")

	body, err := g.post(ctx, g.baseURL+"/gwprocess/v4/api.php", form)
	if err != nil {
		return nil, err
	}

	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sslcommerz: decode session response: %w, body: %s", err, string(body))
	}
	if !strings.EqualFold(resp.Status, "SUCCESS") || resp.GatewayPageURL == "" {
		return nil, fmt.Errorf("sslcommerz: session refused: status %q, reason %q", resp.Status, resp.FailedReason)
	}

	raw := map[string]any{}
	_ = json.Unmarshal(body, &raw)
	delete(raw, "store_passwd")

	return &adapter.CheckoutSession{URL: resp.GatewayPageURL, Raw: raw}, nil
}

// validationResponse is the answer of the merchant transaction-id validation
// API. Amounts arrive as decimal strings.
type validationResponse struct {
	APIConnect string `json:"APIConnect"`
	Found      int    `json:"no_of_trans_found"`
	Element    []struct {
		TranID      string `json:"tran_id"`
		ValID       string `json:"val_id"`
		Amount      string `json:"amount"`
		Status      string `json:"status"`
		Currency    string `json:"currency"`
		BankTranID  string `json:"bank_tran_id"`
		TranDate    string `json:"tran_date"`
		CardType    string `json:"card_type"`
		CardIssuer  string `json:"card_issuer"`
		RiskLevel   string `json:"risk_level"`
		RiskTitle   string `json:"risk_title"`
		StoreAmount string `json:"store_amount"`
	} `json:"element"`
}

// ValidateTransaction asks SSLCommerz for the authoritative state of a
// transaction by our reference. When the provider reports several attempts
// for one reference, a settled one wins over declined retries.
func (g *SSLCommerzGateway) ValidateTransaction(ctx context.Context, transactionID string) (*adapter.CallbackPayload, error) {
	q := url.Values{}
	q.Set("merchant_trans_id", transactionID)
	q.Set("store_id", g.storeID)
	q.Set("store_passwd", g.storePassword)
	q.Set("format", "json")

	reqURL := g.baseURL + "/validator/api/merchantTransIDvalidationAPI.php?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: create validation request: %w", err)
	}
	httpResp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: send validation request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: read validation response: %w", err)
	}

	var resp validationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sslcommerz: decode validation response: %w, body: %s", err, string(body))
	}
	if !strings.EqualFold(resp.APIConnect, "DONE") {
		return nil, fmt.Errorf("sslcommerz: validation API refused: %q", resp.APIConnect)
	}
	if resp.Found == 0 || len(resp.Element) == 0 {
		return nil, domain.ErrPaymentNotFound
	}

	pick := resp.Element[0]
	for _, el := range resp.Element {
		if el.Status == "VALID" || el.Status == "VALIDATED" {
			pick = el
			break
		}
	}

	amount, err := parseAmount(pick.Amount)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: bad amount %q: %w", pick.Amount, err)
	}

	raw := map[string]any{}
	if b, mErr := json.Marshal(pick); mErr == nil {
		_ = json.Unmarshal(b, &raw)
	}

	return &adapter.CallbackPayload{
		TransactionID: pick.TranID,
		Status:        pick.Status,
		Amount:        amount,
		ProviderID:    pick.ValID,
		Raw:           raw,
	}, nil
}

func (g *SSLCommerzGateway) post(ctx context.Context, target string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: read response: %w", err)
	}
	return body, nil
}

// parseAmount converts the provider's decimal string ("499.00") into whole
// currency units. Plans are priced in whole taka, so a non-zero fraction
// means the provider settled a different amount and must not round away.
func parseAmount(s string) (int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	if strings.Trim(frac, "0") != "" {
		return 0, fmt.Errorf("fractional amount %q", s)
	}
	return strconv.ParseInt(whole, 10, 64)
}
