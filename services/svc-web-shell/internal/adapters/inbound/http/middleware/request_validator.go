package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

type RequestValidatorOptions struct {
	Options openapi3filter.Options

	// PathPrefix limits validation to requests under it; others pass.
	PathPrefix string
}

// OpenAPIRequestValidator rejects API requests that do not match the
// embedded document: unknown operations get 404/405, malformed parameters 400.
func OpenAPIRequestValidator(doc *openapi3.T, options RequestValidatorOptions) (func(http.Handler) http.Handler, error) {
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("building openapi router: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || !strings.HasPrefix(r.URL.Path, options.PathPrefix) {
				next.ServeHTTP(w, r)

				return
			}

			if statusCode, err := validateRequest(r, router, &options.Options); err != nil {
				WriteJSONError(w, statusCode, codeForStatus(statusCode), sanitizeErrorMessage(err.Error()))

				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func validateRequest(r *http.Request, router routers.Router, options *openapi3filter.Options) (int, error) {
	route, pathParams, err := router.FindRoute(r)
	if err != nil {
		switch {
		case errors.Is(err, routers.ErrMethodNotAllowed):
			return http.StatusMethodNotAllowed, fmt.Errorf("method not allowed: %w", err)
		default:
			return http.StatusNotFound, fmt.Errorf("route not found: %w", err)
		}
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options:    options,
	}

	if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
		var requestErr *openapi3filter.RequestError
		if errors.As(err, &requestErr) {
			return http.StatusBadRequest, fmt.Errorf("request validation failed: %w", err)
		}

		return http.StatusInternalServerError, fmt.Errorf("unexpected validation error: %w", err)
	}

	return http.StatusOK, nil
}

func codeForStatus(statusCode int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(statusCode), " ", "_"))
}

// sanitizeErrorMessage drops the leading context so internal details such as
// router internals do not leak.
func sanitizeErrorMessage(message string) string {
	if _, rest, found := strings.Cut(message, ": "); found {
		return rest
	}

	return message
}
