// Package common contains paths, request and response types as well as problem details, shared by the HTTP API and its clients.
package common
