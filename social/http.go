package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPResolver resolves identities against per-provider userinfo endpoints.
// Each endpoint receives a GET with the user id as a query parameter and is
// expected to answer with a JSON body matching [UserInfo] field names.
type HTTPResolver struct {
	endpoints  map[string]string
	httpClient *http.Client
}

// NewHTTPResolver builds a resolver for the given provider endpoint map.
// A zero timeout defaults to 10 seconds.
func NewHTTPResolver(endpoints map[string]string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	eps := make(map[string]string, len(endpoints))
	for k, v := range endpoints {
		eps[k] = v
	}
	return &HTTPResolver{
		endpoints:  eps,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type userInfoResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, provider, userID string) (*UserInfo, error) {
	endpoint, ok := r.endpoints[provider]
	if !ok {
		return nil, &ProviderError{
			Provider: provider,
			Kind:     ErrorKindClient,
			Err:      errors.New("unknown provider"),
		}
	}

	reqURL := endpoint + "?user_id=" + url.QueryEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Kind: ErrorKindServer, Err: err}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Kind: ErrorKindServer, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ProviderError{
			Provider: provider,
			Kind:     ErrorKindClient,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	default:
		return nil, &ProviderError{
			Provider: provider,
			Kind:     ErrorKindServer,
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var info userInfoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return nil, &ProviderError{Provider: provider, Kind: ErrorKindProvider, Err: err}
	}
	if info.ID == "" {
		return nil, &ProviderError{
			Provider: provider,
			Kind:     ErrorKindProvider,
			Err:      errors.New("userinfo response missing id"),
		}
	}

	return &UserInfo{
		UserID:        info.ID,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		Name:          info.Name,
	}, nil
}
