package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gclaussn/go-procdoc/http/common"
	"github.com/gclaussn/go-procdoc/model"
	"github.com/go-logr/logr"
)

func encodeJSONProblemResponseBody(w http.ResponseWriter, r *http.Request, logger logr.Logger, err error) {
	var problem common.Problem
	if !errors.As(err, &problem) {
		var documentErr model.Error
		if !errors.As(err, &documentErr) || documentErr.Type == 0 {
			logger.Error(err, "unexpected error occurred", "method", r.Method, "uri", r.RequestURI)

			problem = common.Problem{
				Status: http.StatusInternalServerError,
				Title:  "unexpected error occurred",
				Detail: "see server logs",
			}
		} else {
			var (
				status      int
				problemType common.ProblemType
			)

			switch documentErr.Type {
			case model.ErrorFormat:
				status = http.StatusUnprocessableEntity
				problemType = common.ProblemDocumentFormat
			case model.ErrorDuplicateId:
				status = http.StatusUnprocessableEntity
				problemType = common.ProblemDuplicateId
			case model.ErrorNotFound:
				status = http.StatusNotFound
				problemType = common.ProblemNotFound
			default:
				status = http.StatusUnprocessableEntity
				problemType = common.ProblemIntegrity
			}

			problem = common.Problem{
				Status: status,
				Type:   problemType,
				Title:  documentErr.Title,
				Detail: documentErr.Detail,
			}
		}
	}

	w.Header().Set(common.HeaderContentType, common.ContentTypeProblemJson)
	w.WriteHeader(problem.Status)

	if err := json.NewEncoder(w).Encode(problem); err != nil {
		logger.Error(err, "failed to create JSON problem response body", "method", r.Method, "uri", r.RequestURI)
	}
}

func encodeJSONResponseBody(w http.ResponseWriter, r *http.Request, logger logr.Logger, v any, statusCode int) {
	w.Header().Set(common.HeaderContentType, common.ContentTypeJson)
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(err, "failed to create JSON response body", "method", r.Method, "uri", r.RequestURI)
	}
}
