// Package apis wires the HTTP routes of the catalog service to the
// catalogmanager, ingest, and scrape layers. Handlers are
// httpx.RequestHandler functions; WrapHttpRsp encodes responses and maps
// application errors onto wire errors.
package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rigforge/rigforge/internal/catalogsrv/auth"
	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/rigforge/rigforge/internal/common/httpx"
)

type responseHandlerParam struct {
	Method  string
	Path    string
	Handler httpx.RequestHandler
}

// publicHandlers need no token; login is how a token is obtained.
var publicHandlers = []responseHandlerParam{
	{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Handler: adminLogin,
	},
}

// adminHandlers require a valid admin token.
var adminHandlers = []responseHandlerParam{
	{
		Method:  http.MethodPost,
		Path:    "/imports",
		Handler: importRows,
	},
	{
		Method:  http.MethodPost,
		Path:    "/imports/csv",
		Handler: importCSV,
	},
	{
		Method:  http.MethodPost,
		Path:    "/imports/scrape",
		Handler: importScrape,
	},
	{
		Method:  http.MethodGet,
		Path:    "/imports",
		Handler: listImportRuns,
	},
	{
		Method:  http.MethodGet,
		Path:    "/imports/{runID}",
		Handler: getImportRun,
	},
	{
		Method:  http.MethodGet,
		Path:    "/parts",
		Handler: listParts,
	},
	{
		Method:  http.MethodGet,
		Path:    "/parts/{partID}",
		Handler: getPart,
	},
	{
		Method:  http.MethodPatch,
		Path:    "/parts/{partID}",
		Handler: patchPart,
	},
	{
		Method:  http.MethodDelete,
		Path:    "/parts/{partID}",
		Handler: deletePart,
	},
	{
		Method:  http.MethodGet,
		Path:    "/categories",
		Handler: listCategories,
	},
	{
		Method:  http.MethodPost,
		Path:    "/builds",
		Handler: createBuild,
	},
	{
		Method:  http.MethodGet,
		Path:    "/builds",
		Handler: listBuilds,
	},
	{
		Method:  http.MethodGet,
		Path:    "/builds/{buildID}",
		Handler: getBuild,
	},
	{
		Method:  http.MethodPut,
		Path:    "/builds/{buildID}",
		Handler: updateBuild,
	},
	{
		Method:  http.MethodDelete,
		Path:    "/builds/{buildID}",
		Handler: deleteBuild,
	},
	{
		Method:  http.MethodPost,
		Path:    "/builds/{buildID}/approve",
		Handler: approveBuild,
	},
	{
		Method:  http.MethodPost,
		Path:    "/builds/{buildID}/publish",
		Handler: publishBuild,
	},
	{
		Method:  http.MethodGet,
		Path:    "/builds/{buildID}/price",
		Handler: getBuildPrice,
	},
	{
		Method:  http.MethodGet,
		Path:    "/builds/{buildID}/compat",
		Handler: getBuildCompat,
	},
}

// Router registers the API routes on r. The admin group sits behind the
// token middleware and a request body size cap.
func Router(r chi.Router) chi.Router {
	r.Group(func(r chi.Router) {
		r.Use(limitRequestBody)
		for _, handler := range publicHandlers {
			r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AdminAuthMiddleware)
		r.Use(limitRequestBody)
		for _, handler := range adminHandlers {
			r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
		}
	})
	return r
}

// limitRequestBody caps the request body at the configured maximum so an
// oversized import cannot balloon memory before the handler sees it.
func limitRequestBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, config.Config().MaxRequestBodySize)
		}
		next.ServeHTTP(w, r)
	})
}
