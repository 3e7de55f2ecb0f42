package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/erp-avicola/internal/config"
)

const (
	restPath       = "/rest/v1"
	authPath       = "/auth/v1"
	defaultTimeout = 15 * time.Second
)

// ErrMissingFilter is returned for update and delete queries without a row filter.
var ErrMissingFilter = errors.New("update and delete require at least one filter")

// APIError is the decoded error body of a failed rows or auth request.
type APIError struct {
	Status  int       `json:"-"`
	Code    APICode   `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details"`
	Hint    string    `json:"hint"`

	// auth endpoints use a different envelope; newer servers send error_code
	// and a numeric code, older ones send error
	ErrorCode        string `json:"error"`
	AuthErrorCode    string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

// APICode is an error code sent either as a JSON string (rows API) or as a
// number (auth API).
type APICode string

func (c *APICode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = APICode(s)
		return nil
	}
	*c = APICode(data)
	return nil
}

// Reason returns the symbolic auth error, such as invalid_credentials or
// invalid_grant, falling back to the rows API code.
func (e *APIError) Reason() string {
	switch {
	case e.AuthErrorCode != "":
		return e.AuthErrorCode
	case e.ErrorCode != "":
		return e.ErrorCode
	default:
		return string(e.Code)
	}
}

func (e *APIError) Error() string {
	msg := e.Message
	switch {
	case msg != "":
	case e.ErrorDescription != "":
		msg = e.ErrorDescription
	case e.Msg != "":
		msg = e.Msg
	case e.ErrorCode != "":
		msg = e.ErrorCode
	default:
		msg = http.StatusText(e.Status)
	}

	if code := e.Reason(); code != "" {
		return fmt.Sprintf("supabase api error: status=%d, code=%s, message=%s", e.Status, code, msg)
	}
	return fmt.Sprintf("supabase api error: status=%d, message=%s", e.Status, msg)
}

// TokenSource provides the bearer token attached to rows requests.
type TokenSource interface {
	AccessToken() string
}

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newHTTPClient(baseURL, path, anonKey string) *resty.Client {
	base := strings.TrimSuffix(baseURL, "/")

	return resty.New().
		SetBaseURL(base+path).
		SetHeader("apikey", anonKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(defaultTimeout)
}

func apiErrorFrom(resp *resty.Response, apiErr *APIError) error {
	if apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	return apiErr
}

// NewClients builds the rows and auth clients for one project. The rows client
// authenticates with the auth client's current session.
func NewClients(cfg config.SupabaseConfig, storage SessionStorage) (*RestClient, *AuthClient) {
	auth := NewAuthClient(cfg.URL, cfg.AnonKey, storage)
	rest := NewRestClient(cfg.URL, cfg.AnonKey, auth)
	return rest, auth
}
