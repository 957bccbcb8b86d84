package problem

import "errors"

type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ErrorDetail struct {
	In       string `json:"in"`
	Location string `json:"location"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// APIError implements error + Problem Details (RFC 7807).
type APIError struct {
	Title  string        `json:"title"`
	Status int           `json:"status"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

func (e APIError) Error() string { return e.Title }

func NewBadRequest(location, detail string, params ...InvalidParam) APIError {
	return APIError{
		Title:  "Request validation failed",
		Status: 400,
		Errors: toErrorDetails(params, detail, "body", location, "bad_request"),
	}
}

// NewNotFound reports an absent catalog entity. The entity kind ends up in
// the error code ("version_not_found", "download_not_found", ...) so that
// clients can tell which level of the hierarchy broke the lookup.
func NewNotFound(entity, location, detail string) APIError {
	return APIError{
		Title:  "Resource Not Found",
		Status: 404,
		Errors: toErrorDetails(nil, detail, "path", location, entity+"_not_found"),
	}
}

// NewConflict reports an ingestion target that already exists.
func NewConflict(location, detail string) APIError {
	return APIError{
		Title:  "Conflict",
		Status: 409,
		Errors: toErrorDetails(nil, detail, "body", location, "conflict"),
	}
}

// NewDownloadFailed reports metadata that resolved fine while the bytes
// behind it could not be read. Distinct from not-found on purpose.
func NewDownloadFailed(detail string) APIError {
	return APIError{
		Title:  "Download Failed",
		Status: 500,
		Errors: toErrorDetails(nil, detail, "", "", "download_failed"),
	}
}

// NewStoreUnavailable wraps a persistence failure unrelated to the query.
func NewStoreUnavailable(err error) APIError {
	return APIError{
		Title:  "Store Unavailable",
		Status: 500,
		Errors: toErrorDetails(nil, err.Error(), "", "", "store_unavailable"),
	}
}

func NewInternalServerError(detail string) APIError {
	return APIError{
		Title:  "Internal Server Error",
		Status: 500,
		Errors: toErrorDetails(nil, detail, "", "", "internal_error"),
	}
}

// IsNotFound reports whether err is an APIError with 404 status.
func IsNotFound(err error) bool {
	var apiErr APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// IsConflict reports whether err is an APIError with 409 status.
func IsConflict(err error) bool {
	var apiErr APIError
	return errors.As(err, &apiErr) && apiErr.Status == 409
}

// Code returns the first error detail code, or an empty string.
func Code(err error) string {
	var apiErr APIError
	if !errors.As(err, &apiErr) || len(apiErr.Errors) == 0 {
		return ""
	}
	return apiErr.Errors[0].Code
}

func toErrorDetails(params []InvalidParam, fallbackDetail, fallbackIn, fallbackLocation, fallbackCode string) []ErrorDetail {
	if len(params) == 0 {
		if fallbackDetail == "" {
			return nil
		}
		return []ErrorDetail{{
			In:       fallbackIn,
			Location: fallbackLocation,
			Code:     fallbackCode,
			Detail:   fallbackDetail,
		}}
	}
	out := make([]ErrorDetail, 0, len(params))
	for _, p := range params {
		out = append(out, ErrorDetail{
			In:       "body",
			Location: p.Name,
			Code:     p.Name,
			Detail:   p.Reason,
		})
	}
	return out
}
