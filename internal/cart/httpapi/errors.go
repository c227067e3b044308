package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	cartgrpc "github.com/dwikikusuma/storefront-cart/internal/cart/grpc"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// statusClientClosedRequest is the nginx convention for a caller that went
// away before the response was written.
const statusClientClosedRequest = 499

// httpStatusFromGRPC returns the HTTP status, the code name and the message
// to expose for err.
func httpStatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED", st.Message()
	case codes.PermissionDenied:
		return http.StatusForbidden, "PERMISSION_DENIED", st.Message()
	case codes.FailedPrecondition:
		return http.StatusConflict, "FAILED_PRECONDITION", st.Message()
	case codes.Canceled:
		return statusClientClosedRequest, "CANCELLED", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", st.Message()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var verr *checkoutapp.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorDetail{
			Code:    "INVALID_FORM",
			Message: "please correct the highlighted fields",
			Fields:  verr.Fields,
		}})
		return
	}
	if errors.Is(err, checkoutapp.ErrEmptyCart) {
		err = status.Error(codes.FailedPrecondition, "cart is empty")
	}

	code, name, msg := httpStatusFromGRPC(cartgrpc.MapErr(err))
	writeJSON(w, code, errorBody{Error: errorDetail{Code: name, Message: msg}})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, status.Error(codes.InvalidArgument, msg))
}
