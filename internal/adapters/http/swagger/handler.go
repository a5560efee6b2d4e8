// Package swagger serves the embedded OpenAPI document and a ReDoc page.
package swagger

import (
	"context"
	"net/http"
)

const (
	docsPath    = "/api-docs"
	openAPIPath = "/openapi.yaml"

	// redocScript is the ReDoc standalone bundle the docs page loads.
	redocScript  = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"
	cacheControl = "public, max-age=300"
)

// Register attaches the docs routes to mux. Both answer GET and HEAD only.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("swagger: nil mux")
	}
	mux.Handle("GET "+docsPath, static("text/html; charset=utf-8", []byte(indexHTML)))
	mux.Handle("GET "+openAPIPath, static("application/yaml; charset=utf-8", OpenAPI))
}

func static(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", cacheControl)
		_, _ = w.Write(body)
	}
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>woke API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="` + redocScript + `"></script>
    <script>Redoc.init('` + openAPIPath + `', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
