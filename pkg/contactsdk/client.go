package contactsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient talks to the unauthenticated endpoints and creates Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Now is used for session expiry bookkeeping; tests replace it.
	Now func() time.Time
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Now: time.Now,
	}
}
