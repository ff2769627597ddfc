// Package httpapi exposes the import pipeline and custom-domain
// verification over a JSON HTTP API built on chi.
//
// Handlers return errors instead of writing error responses themselves.
// An *HTTPError carries the status code and public message; any other error
// is reported as a 500 and logged. Error bodies look like
//
//	{"error": "import session not found", "code": "import_not_found", "request_id": "..."}
package httpapi
