package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

// StripeProvider talks to the Stripe REST API with the publishable key, the
// same surface the mobile SDK uses. Card data is form-encoded straight to
// /v1/payment_methods and never appears in errors or logs.
type StripeProvider struct {
	baseURL   string
	http      *http.Client
	keys      KeySource
	returnURL string
}

func NewStripeProvider(baseURL string, keys KeySource, returnURL string, timeout time.Duration) (*StripeProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("payments: provider base url is required")
	}
	if keys == nil {
		return nil, fmt.Errorf("payments: key source is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StripeProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		keys:      keys,
		returnURL: returnURL,
	}, nil
}

type stripeError struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}

type stripePaymentMethod struct {
	ID string `json:"id"`
}

type stripeIntent struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	NextAction *struct {
		RedirectToURL *struct {
			URL string `json:"url"`
		} `json:"redirect_to_url"`
	} `json:"next_action"`
	LastPaymentError *struct {
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"last_payment_error"`
}

func (p *StripeProvider) CreatePaymentMethod(ctx context.Context, card *domain.CardDetails) (string, error) {
	month, year, err := splitExpiry(card.Expiry)
	if err != nil {
		return "", domain.NewError(domain.KindValidation, "invalid expiry date", err)
	}

	form := url.Values{}
	form.Set("type", "card")
	form.Set("card[number]", card.Number)
	form.Set("card[exp_month]", month)
	form.Set("card[exp_year]", year)
	form.Set("card[cvc]", card.CVV)
	form.Set("billing_details[name]", card.HolderName)

	var pm stripePaymentMethod
	if err := p.post(ctx, "/v1/payment_methods", form, &pm); err != nil {
		return "", err
	}
	if pm.ID == "" {
		return "", domain.NewError(domain.KindProvider, "provider returned no payment method id", nil)
	}
	return pm.ID, nil
}

func (p *StripeProvider) ConfirmIntent(ctx context.Context, clientSecret, paymentMethodID string) (*ProviderOutcome, error) {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client_secret", clientSecret)
	form.Set("payment_method", paymentMethodID)
	if p.returnURL != "" {
		form.Set("return_url", p.returnURL)
	}

	var intent stripeIntent
	if err := p.post(ctx, "/v1/payment_intents/"+intentID+"/confirm", form, &intent); err != nil {
		return nil, err
	}
	return outcomeFromIntent(&intent), nil
}

func (p *StripeProvider) IntentStatus(ctx context.Context, clientSecret string) (ProviderStatus, error) {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return "", err
	}

	key, err := p.keys.PublicKey(ctx)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/v1/payment_intents/%s?client_secret=%s", p.baseURL, intentID, url.QueryEscape(clientSecret))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", domain.NewError(domain.KindValidation, "build provider request", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)

	var intent stripeIntent
	if err := p.send(req, &intent); err != nil {
		return "", err
	}
	return outcomeFromIntent(&intent).Status, nil
}

func (p *StripeProvider) post(ctx context.Context, path string, form url.Values, out any) error {
	key, err := p.keys.PublicKey(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.NewError(domain.KindValidation, "build provider request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+key)

	return p.send(req, out)
}

func (p *StripeProvider) send(req *http.Request, out any) error {
	resp, err := p.http.Do(req)
	if err != nil {
		return domain.NewError(domain.KindNetwork, fmt.Sprintf("provider request failed: %v", err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewError(domain.KindNetwork, "read provider response", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var se stripeError
		_ = json.Unmarshal(raw, &se)
		message := se.Error.Message
		if message == "" {
			message = fmt.Sprintf("provider status %d", resp.StatusCode)
		}
		e := domain.NewError(domain.KindProvider, message, nil)
		e.Code = se.Error.Code
		if se.Error.DeclineCode != "" {
			e.Code = se.Error.DeclineCode
		}
		return e
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.NewError(domain.KindProvider, "malformed provider response", err)
	}
	return nil
}

func outcomeFromIntent(intent *stripeIntent) *ProviderOutcome {
	switch intent.Status {
	case "succeeded", "processing", "requires_capture":
		return &ProviderOutcome{Status: ProviderSucceeded}
	case "requires_action", "requires_source_action":
		out := &ProviderOutcome{Status: ProviderRequiresAction}
		if intent.NextAction != nil && intent.NextAction.RedirectToURL != nil {
			out.RedirectURL = intent.NextAction.RedirectToURL.URL
		}
		return out
	default:
		out := &ProviderOutcome{Status: ProviderDeclined, Message: "payment was not completed"}
		if lpe := intent.LastPaymentError; lpe != nil {
			out.Message = lpe.Message
			out.DeclineCode = lpe.Code
			if lpe.DeclineCode != "" {
				out.DeclineCode = lpe.DeclineCode
			}
		}
		return out
	}
}

// intentIDFromSecret derives the intent id from a client secret of the form
// pi_xxx_secret_yyy.
func intentIDFromSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || id == "" {
		return "", domain.NewError(domain.KindValidation, "malformed client secret", nil)
	}
	return id, nil
}
