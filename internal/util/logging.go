package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"file-manager-server/internal/apperr"
	"file-manager-server/internal/model/requestresponse"
)

func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}

// HandleError : writes the standard error envelope for err's kind. The
// response text never distinguishes "absent" from "not owned".
func HandleError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)

	message := "internal server error"
	if status != http.StatusInternalServerError {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
		} else {
			message = err.Error()
		}
	} else {
		log.Printf("internal error: %v", err)
	}

	WriteError(w, message, status)
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
