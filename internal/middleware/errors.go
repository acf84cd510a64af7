package middleware

import (
	"encoding/json"
	"net/http"

	apierrors "penyusutan/internal/errors"
)

// Problem is the RFC 7807 body middleware writes when it rejects a request
// before any handler runs. Type values match the application error handler.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

func (p Problem) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	return json.NewEncoder(w).Encode(p)
}

var statusProblemTypes = map[int]string{
	http.StatusBadRequest:            apierrors.TypeValidation,
	http.StatusNotFound:              apierrors.TypeNotFound,
	http.StatusRequestEntityTooLarge: apierrors.TypePayloadTooLarge,
	http.StatusUnsupportedMediaType:  apierrors.TypeInvalidUpload,
	http.StatusTooManyRequests:       apierrors.TypeRateLimit,
	http.StatusServiceUnavailable:    apierrors.TypeUnavailable,
	http.StatusGatewayTimeout:        apierrors.TypeTimeout,
}

// ProblemFromStatus builds the problem for status. Statuses without a
// dedicated type are reported as internal.
func ProblemFromStatus(status int, detail, traceID string) Problem {
	problemType, ok := statusProblemTypes[status]
	if !ok {
		problemType = apierrors.TypeInternal
	}
	return Problem{
		Type:   problemType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}
