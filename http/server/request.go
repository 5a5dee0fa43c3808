package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gclaussn/go-procdoc/http/common"
	"github.com/gclaussn/go-procdoc/model"
	"github.com/gclaussn/go-procdoc/store"
	"github.com/gclaussn/go-procdoc/validation"
	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterValidation("document_name", func(fl validator.FieldLevel) bool {
		return store.RegexpName.MatchString(fl.Field().String())
	})

	return validate
}

// decodeDocumentRequestBody decodes a document in the persisted JSON format.
// Media type, request body or document format related errors are returned as a Problem.
func decodeDocumentRequestBody(w http.ResponseWriter, r *http.Request, maxSize int64) (*model.Document, error) {
	if contentType := r.Header.Get(common.HeaderContentType); contentType != "" {
		mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
		if mediaType != common.ContentTypeJson {
			return nil, common.Problem{
				Status: http.StatusUnsupportedMediaType,
				Type:   common.ProblemHttpMediaType,
				Title:  "unsupported media type",
				Detail: fmt.Sprintf("media type %s is not supported", mediaType),
			}
		}
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSize))
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return nil, common.Problem{
				Status: http.StatusRequestEntityTooLarge,
				Type:   common.ProblemHttpRequestBody,
				Title:  "invalid request body",
				Detail: fmt.Sprintf("request body must not exceed %d bytes", maxSize),
			}
		}
		return nil, common.Problem{
			Status: http.StatusBadRequest,
			Type:   common.ProblemHttpRequestBody,
			Title:  "invalid request body",
			Detail: fmt.Sprintf("failed to read request body: %v", err),
		}
	}

	return model.Unmarshal(data)
}

func parseName(r *http.Request) (string, error) {
	name := r.PathValue("name")
	if err := validate.Var(name, "document_name"); err != nil {
		return "", common.Problem{
			Status: http.StatusBadRequest,
			Type:   common.ProblemValidation,
			Title:  "invalid path parameter name",
			Detail: "failed to validate path parameter",
			Errors: []common.Error{{
				Pointer: "name",
				Type:    "document_name",
				Detail:  fmt.Sprintf("must match regex %s", store.RegexpName),
				Value:   name,
			}},
		}
	}
	return name, nil
}

// parseValidationOptions applies the check group query parameters to the given options.
// It returns true, if at least one parameter is set.
func parseValidationOptions(r *http.Request, options *validation.Options) (bool, error) {
	query := r.URL.Query()

	params := []struct {
		name  string
		value *bool
	}{
		{common.QueryCompleteness, &options.CompletenessEnabled},
		{common.QueryFlow, &options.FlowEnabled},
		{common.QueryNaming, &options.NamingEnabled},
	}

	var (
		changed bool
		errs    []common.Error
	)
	for _, param := range params {
		if !query.Has(param.name) {
			continue
		}

		value := query.Get(param.name)

		b, err := strconv.ParseBool(value)
		if err != nil {
			errs = append(errs, common.Error{
				Pointer: "?" + param.name,
				Type:    "boolean",
				Detail:  "must be true or false",
				Value:   value,
			})
			continue
		}

		*param.value = b
		changed = true
	}

	if len(errs) != 0 {
		return false, common.Problem{
			Status: http.StatusBadRequest,
			Type:   common.ProblemHttpRequestUri,
			Title:  "invalid query parameters",
			Detail: "failed to validate query parameters",
			Errors: errs,
		}
	}

	return changed, nil
}
