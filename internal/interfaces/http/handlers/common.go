package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

const maxBodyBytes = 1 << 20

// writeJSON wraps data in the success envelope.
func writeJSON[T any](w http.ResponseWriter, statusCode int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(common.NewSuccessResponse(data))
}

// writeError maps err to its HTTP status through the error code table.
// Server errors are masked.
func writeError(w http.ResponseWriter, log logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	detail := ""
	var ae *errors.AppError
	if errors.As(err, &ae) {
		message = ae.Message
		detail = ae.Detail
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", logging.String("code", string(code)), logging.Err(err))
		message = errors.DefaultMessageForCode(code)
		if code == errors.CodeUnknown {
			message = "internal server error"
		}
		detail = ""
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(common.NewErrorResponse(string(code), message, detail))
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst as is.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.NewValidation("invalid request body").WithDetail(err.Error())
	}
	return nil
}

// parseOptionalDate returns the zero time for an empty string.
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := common.ParseDate(s)
	if err != nil {
		return time.Time{}, errors.NewValidation(err.Error())
	}
	return t, nil
}
