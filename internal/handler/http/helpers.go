package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/billing"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/customer"
	"github.com/vasiliy-maslov/ecommerce-microservices/pos-service/internal/order"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

// newValidator reports fields by their JSON names and validates decimals as
// numbers, so money fields accept gte/lte tags.
func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		d, ok := v.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		return d.InexactFloat64()
	}, decimal.Decimal{})
	return validate
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			details[fe.Field()] = "is required"
		case "oneof":
			details[fe.Field()] = fmt.Sprintf("must be one of: %s", fe.Param())
		case "min", "gte":
			details[fe.Field()] = fmt.Sprintf("must be at least %s", fe.Param())
		case "max", "lte":
			details[fe.Field()] = fmt.Sprintf("must be at most %s", fe.Param())
		default:
			details[fe.Field()] = fmt.Sprintf("failed on '%s' validation", fe.Tag())
		}
	}
	return details
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}
	return true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondWithServiceError answers a service failure. Domain errors are shown
// to the client as they are, anything else is logged and replaced by
// fallback.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	statusCode := mapErrorToStatusCode(err)
	if statusCode == http.StatusInternalServerError {
		log.Error().Err(err).Msg(fallback)
		respondWithError(w, statusCode, fallback)
		return
	}

	log.Warn().Err(err).Int("status", statusCode).Msg(fallback)
	respondWithError(w, statusCode, err.Error())
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, billing.ErrSessionNotFound),
		errors.Is(err, billing.ErrItemNotInCart):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateProduct),
		errors.Is(err, customer.ErrDuplicateCustomer),
		errors.Is(err, order.ErrDuplicateOrderID),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, order.ErrStatusConflict):
		return http.StatusConflict
	case errors.Is(err, billing.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, customer.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, customer.ErrInvalidCustomer),
		errors.Is(err, order.ErrInvalidOrder),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, billing.ErrInvalidDiscount),
		errors.Is(err, billing.ErrInvalidPaymentMethod),
		errors.Is(err, billing.ErrInvalidOrderType),
		errors.Is(err, billing.ErrInvalidExpectedDelivery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
