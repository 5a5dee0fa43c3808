package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gclaussn/go-procdoc/http/common"
	"github.com/gclaussn/go-procdoc/model"
	"github.com/gclaussn/go-procdoc/store"
	"github.com/gclaussn/go-procdoc/validation"
	"github.com/go-logr/logr"
	"github.com/go-playground/validator/v10"
)

// New creates a server. If s is nil, the document operations are not available.
func New(s store.Store, customizers ...func(*Options)) (*Server, error) {
	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	engine, err := validation.New(func(o *validation.Options) {
		*o = options.Validation
		o.Logger = options.Logger
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	var handler http.Handler = mux
	if options.BasicAuthUsername != "" {
		handler = &basicAuthHandler{
			username: options.BasicAuthUsername,
			password: options.BasicAuthPassword,
			handler:  mux,
			logger:   options.Logger,
		}
	}

	// server-wide context for incoming requests
	httpServerCtx, httpServerCancel := context.WithCancel(context.Background())

	httpServer := http.Server{
		Addr: options.BindAddress,
		BaseContext: func(_ net.Listener) context.Context {
			return httpServerCtx
		},
		Handler:      http.TimeoutHandler(handler, options.HandlerTimeout, "handler timed out"),
		IdleTimeout:  options.IdleTimeout,
		ReadTimeout:  options.ReadTimeout,
		WriteTimeout: options.WriteTimeout,
	}

	if options.Configure != nil {
		options.Configure(&httpServer)
	}

	server := Server{
		engine:           engine,
		store:            s,
		httpServer:       &httpServer,
		httpServerCtx:    httpServerCtx,
		httpServerCancel: httpServerCancel,
		logger:           options.Logger,
		options:          options,
	}

	// operations:start
	mux.HandleFunc("POST "+common.PathDigest, server.digestDocument)
	mux.HandleFunc("POST "+common.PathValidate, server.validateDocument)

	if s != nil {
		mux.HandleFunc("GET "+common.PathDocuments, server.listDocuments)
		mux.HandleFunc("GET "+common.PathDocumentsName, server.loadDocument)
		mux.HandleFunc("PUT "+common.PathDocumentsName, server.saveDocument)
		mux.HandleFunc("DELETE "+common.PathDocumentsName, server.deleteDocument)
		mux.HandleFunc("GET "+common.PathDocumentsValidation, server.validateStoredDocument)
	}

	mux.HandleFunc("GET "+common.PathReadiness, server.checkReadiness)
	// operations:end

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return &server, nil
}

func NewOptions() Options {
	return Options{
		BindAddress: "127.0.0.1:8080",

		HandlerTimeout: 30 * time.Second,
		IdleTimeout:    60 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   35 * time.Second,

		ShutdownDelay:       5 * time.Second,
		ShutdownPeriod:      30 * time.Second,
		ShutdownForcePeriod: 5 * time.Second,

		MaxDocumentSize: 8 << 20,

		Validation: validation.NewOptions(),

		Logger: logr.Discard(),
	}
}

type Options struct {
	BindAddress string `validate:"required,hostname_port"` // TCP address for the server to listen on.

	HandlerTimeout time.Duration `validate:"gt=0"` // Time limit for HTTP handler - when reached, the handler responds with HTTP 503.
	IdleTimeout    time.Duration `validate:"gt=0"` // Maximum amount of time to wait for the next request, when keep-alives are enabled - see http.Server#IdleTimeout
	ReadTimeout    time.Duration `validate:"gt=0"` // Maximum duration for reading the entire request - see http.Server#ReadTimeout
	WriteTimeout   time.Duration `validate:"gt=0"` // Maximum duration before timing out writing the response - see http.Server#WriteTimeout

	ShutdownDelay       time.Duration `validate:"gte=0"` // Delay between the shutdown signal and the actual shutdown, used to propagate readiness.
	ShutdownPeriod      time.Duration `validate:"gt=0"`  // Period for a graceful shutdown without interrupting ongoing requests.
	ShutdownForcePeriod time.Duration `validate:"gte=0"` // Period for a forced shutdown, where ongoing requests are canceled.

	BasicAuthUsername string `validate:"required_with=BasicAuthPassword"` // If set, requests must be authenticated.
	BasicAuthPassword string `validate:"required_with=BasicAuthUsername"`

	MaxDocumentSize int64 `validate:"gt=0"` // Maximum size of a document request body in bytes.

	Validation validation.Options `validate:"-"` // Default options of the validation operations.

	Logger logr.Logger `validate:"-"`

	Configure func(*http.Server) `validate:"-"` // Optional function, used to configure the underlying HTTP server if needed.
}

func (o Options) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(o)
	if err == nil {
		return o.Validation.Validate()
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, len(validationErrors))
	for i, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "gt":
			messages[i] = fmt.Sprintf("%s must be greater than %s", fieldError.Field(), fieldError.Param())
		case "gte":
			messages[i] = fmt.Sprintf("%s must be greater than or equal to %s", fieldError.Field(), fieldError.Param())
		case "hostname_port":
			messages[i] = fmt.Sprintf("%s %q is not a valid TCP address", fieldError.Field(), fieldError.Value())
		case "required":
			messages[i] = fmt.Sprintf("%s is required", fieldError.Field())
		case "required_with":
			messages[i] = fmt.Sprintf("%s is required, when %s is set", fieldError.Field(), fieldError.Param())
		default:
			messages[i] = fmt.Sprintf("%s is invalid", fieldError.Field())
		}
	}

	return errors.New(strings.Join(messages, "; "))
}

type Server struct {
	engine           *validation.Engine
	store            store.Store
	httpServer       *http.Server
	httpServerCtx    context.Context    // server-wide base context for incoming requests
	httpServerCancel context.CancelFunc // invoked after server shutdown to cancel to ongoing requests
	isShuttingDown   atomic.Bool
	logger           logr.Logger
	options          Options
}

// Handler returns the HTTP handler, which serves all operations.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening in a separate goroutine.
// An error is returned, if the server cannot listen on the configured address.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %v", s.httpServer.Addr, err)
	}

	go func() {
		s.logger.Info("server listening", "address", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error(err, "failed to serve HTTP")
		}
	}()

	return nil
}

func (s *Server) Shutdown() {
	s.isShuttingDown.Store(true)
	s.logger.Info("server is shutting down")

	time.Sleep(s.options.ShutdownDelay)
	s.logger.Info("server is shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.options.ShutdownPeriod)
	defer shutdownCancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.httpServerCancel()
	if err != nil {
		s.logger.Error(err, "failed to shutdown HTTP server")
		time.Sleep(s.options.ShutdownForcePeriod)
	}

	s.logger.Info("server shut down")
}

// command handler

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	name, err := parseName(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	if err := s.store.Delete(r.Context(), name); err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) digestDocument(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDocumentRequestBody(w, r, s.options.MaxDocumentSize)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	digest, err := model.Digest(d)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	encodeJSONResponseBody(w, r, s.logger, common.DigestRes{Digest: digest}, http.StatusOK)
}

func (s *Server) saveDocument(w http.ResponseWriter, r *http.Request) {
	name, err := parseName(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	d, err := decodeDocumentRequestBody(w, r, s.options.MaxDocumentSize)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	digest, err := model.Digest(d)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	if err := s.store.Save(r.Context(), name, d); err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	encodeJSONResponseBody(w, r, s.logger, common.SaveDocumentRes{Name: name, Digest: digest}, http.StatusOK)
}

func (s *Server) validateDocument(w http.ResponseWriter, r *http.Request) {
	engine, err := s.parseEngine(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	d, err := decodeDocumentRequestBody(w, r, s.options.MaxDocumentSize)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	encodeJSONResponseBody(w, r, s.logger, engine.Validate(d), http.StatusOK)
}

// query handler

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	if names == nil {
		names = []string{}
	}

	encodeJSONResponseBody(w, r, s.logger, common.ListDocumentsRes{Count: len(names), Names: names}, http.StatusOK)
}

func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) {
	name, err := parseName(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	d, err := s.store.Load(r.Context(), name)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	b, err := model.Marshal(d)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	w.Header().Set(common.HeaderContentType, common.ContentTypeJson)
	w.Write(b)
}

func (s *Server) validateStoredDocument(w http.ResponseWriter, r *http.Request) {
	name, err := parseName(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	engine, err := s.parseEngine(r)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	d, err := s.store.Load(r.Context(), name)
	if err != nil {
		encodeJSONProblemResponseBody(w, r, s.logger, err)
		return
	}

	encodeJSONResponseBody(w, r, s.logger, engine.Validate(d), http.StatusOK)
}

// management

func (s *Server) checkReadiness(w http.ResponseWriter, r *http.Request) {
	if s.isShuttingDown.Load() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ready"))
}

// parseEngine returns the server's validation engine or, if check groups are enabled or disabled via query parameters, a request specific engine.
func (s *Server) parseEngine(r *http.Request) (*validation.Engine, error) {
	options := s.options.Validation

	changed, err := parseValidationOptions(r, &options)
	if err != nil {
		return nil, err
	}
	if !changed {
		return s.engine, nil
	}

	return validation.New(func(o *validation.Options) {
		*o = options
		o.Logger = s.logger
	})
}
