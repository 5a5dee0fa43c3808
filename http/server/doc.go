// Package server implements an HTTP API for validating, digesting and storing process documents.
/*
server implements a handler for each operation, using the [net/http] package.

Run a Server

A server optionally requires a store. Without a store, only the stateless operations (validate and digest) are available.
If a basic auth username and password are set, all requests, except readiness checks, must be authenticated.

A server is listening on "127.0.0.1:8080".
The TCP bind address as well as various timeouts can be configured by customizing the configuration.

	server, err := server.New(s, func(o *server.Options) {
		o.BasicAuthUsername = "procdoc"
		o.BasicAuthPassword = "secret"
	})
	if err != nil {
		log.Fatalf("failed to create HTTP server: %v", err)
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("failed to start HTTP server: %v", err)
	}

	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGTERM)

	<-signalC

	server.Shutdown()

Operations

	POST   /validate                     validate the document of the request body
	POST   /digest                       digest the document of the request body
	GET    /documents                    list the names of all stored documents
	GET    /documents/{name}             load a stored document
	PUT    /documents/{name}             store the document of the request body
	DELETE /documents/{name}             delete a stored document
	GET    /documents/{name}/validation  validate a stored document
	GET    /readiness                    check if the server is ready

Validation operations accept the query parameters completeness, flow and naming (true or false) to enable or disable a check group.
*/
package server
