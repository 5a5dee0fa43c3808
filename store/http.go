package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gclaussn/go-procdoc/http/common"
	"github.com/gclaussn/go-procdoc/model"
	"github.com/go-logr/logr"
)

// NewHttpStore creates a store, which uses the document operations of a procdoc server.
// If the URL contains user information, requests are authenticated via basic auth.
func NewHttpStore(rawUrl string, customizers ...func(*Options)) (*HttpStore, error) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %s", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("URL has no host")
	}

	options := newOptions(customizers)

	s := HttpStore{
		httpClient: &http.Client{Timeout: options.Timeout},
		logger:     options.Logger,
	}

	if u.User != nil {
		s.username = u.User.Username()
		s.password, _ = u.User.Password()
		u.User = nil
	}

	s.url = strings.TrimSuffix(u.String(), "/")
	return &s, nil
}

type HttpStore struct {
	httpClient *http.Client
	url        string
	username   string
	password   string
	logger     logr.Logger
}

func (s *HttpStore) Save(ctx context.Context, name string, d *model.Document) error {
	if err := checkName(name); err != nil {
		return err
	}

	data, err := model.Marshal(d)
	if err != nil {
		return err
	}

	res, err := s.do(ctx, http.MethodPut, documentPath(name), data)
	if err != nil {
		return err
	}

	var resBody common.SaveDocumentRes
	if err := decodeResponse(res, &resBody); err != nil {
		return err
	}

	d.MarkSaved()

	s.logger.V(1).Info("saved document", "name", name, "digest", resBody.Digest)
	return nil
}

func (s *HttpStore) Load(ctx context.Context, name string) (*model.Document, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	res, err := s.do(ctx, http.MethodGet, documentPath(name), nil)
	if err != nil {
		return nil, err
	}

	var data json.RawMessage
	if err := decodeResponse(res, &data); err != nil {
		return nil, err
	}

	return decode(name, data, s.logger)
}

func (s *HttpStore) List(ctx context.Context) ([]string, error) {
	res, err := s.do(ctx, http.MethodGet, common.PathDocuments, nil)
	if err != nil {
		return nil, err
	}

	var resBody common.ListDocumentsRes
	if err := decodeResponse(res, &resBody); err != nil {
		return nil, err
	}

	return resBody.Names, nil
}

func (s *HttpStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	res, err := s.do(ctx, http.MethodDelete, documentPath(name), nil)
	if err != nil {
		return err
	}

	if err := decodeResponse(res, nil); err != nil {
		return err
	}

	s.logger.V(1).Info("deleted document", "name", name)
	return nil
}

func (s *HttpStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *HttpStore) do(ctx context.Context, method string, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %v", method, err)
	}

	if body != nil {
		req.Header.Set(common.HeaderContentType, common.ContentTypeJson)
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s %s: %v", method, path, err)
	}
	return res, nil
}

// decodeResponse decodes a JSON response body into v, if v is not nil.
// Problems of document related types are returned as [model.Error].
func decodeResponse(res *http.Response, v any) error {
	defer res.Body.Close()

	decoder := json.NewDecoder(res.Body)

	if res.Header.Get(common.HeaderContentType) == common.ContentTypeProblemJson {
		var problem common.Problem
		if err := decoder.Decode(&problem); err != nil {
			return fmt.Errorf("failed to decode JSON problem response body: %v", err)
		}

		var errorType model.ErrorType
		switch problem.Type {
		case common.ProblemDocumentFormat:
			errorType = model.ErrorFormat
		case common.ProblemDuplicateId:
			errorType = model.ErrorDuplicateId
		case common.ProblemNotFound:
			errorType = model.ErrorNotFound
		default:
			return problem
		}

		return model.Error{
			Type:   errorType,
			Title:  problem.Title,
			Detail: problem.Detail,
		}
	}

	if res.StatusCode >= 300 {
		text := fmt.Sprintf("%s %s: HTTP %d", res.Request.Method, res.Request.URL.Path, res.StatusCode)

		b, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("%s: %v", text, err)
		} else if len(b) != 0 {
			return fmt.Errorf("%s: %s", text, strings.TrimSpace(string(b)))
		} else {
			return errors.New(text)
		}
	}

	if v == nil {
		return nil
	}
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON response body: %v", err)
	}
	return nil
}

func documentPath(name string) string {
	return strings.Replace(common.PathDocumentsName, "{name}", name, 1)
}
