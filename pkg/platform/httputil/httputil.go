package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "tausepro/pkg/domain-errors"
)

// ErrorResponse is the JSON body every console error is rendered as.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	UpgradeURL  string `json:"upgrade_url,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure can only truncate the body.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates a domain error into its HTTP status and JSON body.
// Errors without a domain code are rendered as 500 without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		resp := ErrorResponse{Error: string(domainErr.Code), Description: domainErr.Message}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), resp)
		return
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: string(dErrors.CodeInternal)})
}

// WritePaymentRequired renders a 402 that points the console at the upgrade flow.
func WritePaymentRequired(w http.ResponseWriter, feature, upgradeURL string) {
	WriteJSON(w, http.StatusPaymentRequired, ErrorResponse{
		Error:       string(dErrors.CodePaymentRequired),
		Description: feature + " is not included in the current plan",
		UpgradeURL:  upgradeURL,
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodePaymentRequired:
		return http.StatusPaymentRequired
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeUnavailable:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatusToDomainCode is the inverse used when reading upstream API responses.
func HTTPStatusToDomainCode(status int) dErrors.Code {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return dErrors.CodeBadRequest
	case status == http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case status == http.StatusPaymentRequired:
		return dErrors.CodePaymentRequired
	case status == http.StatusForbidden:
		return dErrors.CodeForbidden
	case status == http.StatusNotFound:
		return dErrors.CodeNotFound
	case status == http.StatusConflict:
		return dErrors.CodeConflict
	case status == http.StatusTooManyRequests:
		return dErrors.CodeRateLimited
	case status >= http.StatusInternalServerError:
		return dErrors.CodeUnavailable
	default:
		return dErrors.CodeInternal
	}
}
