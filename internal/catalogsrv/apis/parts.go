package apis

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rigforge/rigforge/internal/catalogsrv/catalogmanager"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/httpx"
)

// listParts handles GET /parts with the filter set the admin UI searches by.
// approved, usable, and inStock are tri-state: absent means no filtering.
func listParts(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	filter, err := partFilterFromQuery(r)
	if err != nil {
		return nil, err
	}

	list, aerr := catalogmanager.ListParts(ctx, filter)
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   list,
	}, nil
}

func getPart(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	pm, err := catalogmanager.LoadPartManager(ctx, chi.URLParam(r, "partID"))
	if err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   pm.ToAPI(),
	}, nil
}

func patchPart(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	if r.Body == nil {
		return nil, httpx.ErrInvalidRequest("request body is required")
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, httpx.ErrUnableToReadRequest()
	}

	pm, aerr := catalogmanager.LoadPartManager(ctx, chi.URLParam(r, "partID"))
	if aerr != nil {
		return nil, aerr
	}
	if aerr := pm.ApplyPatch(ctx, body); aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   pm.ToAPI(),
	}, nil
}

func deletePart(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	pm, err := catalogmanager.LoadPartManager(ctx, chi.URLParam(r, "partID"))
	if err != nil {
		return nil, err
	}
	if err := pm.Delete(ctx); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusNoContent,
		Response:   nil,
	}, nil
}

func listCategories(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	categories, err := catalogmanager.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   categories,
	}, nil
}

func partFilterFromQuery(r *http.Request) (models.PartFilter, error) {
	q := r.URL.Query()
	filter := models.PartFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Vendor:   strings.TrimSpace(q.Get("vendor")),
		Query:    strings.TrimSpace(q.Get("q")),
	}

	for name, dst := range map[string]**bool{
		"approved": &filter.Approved,
		"usable":   &filter.Usable,
		"inStock":  &filter.InStock,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return filter, httpx.ErrInvalidRequest(name + " must be a boolean")
			}
			*dst = &b
		}
	}

	if v := q.Get("includeDeleted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, httpx.ErrInvalidRequest("includeDeleted must be a boolean")
		}
		filter.IncludeDeleted = b
	}

	for name, dst := range map[string]*int{
		"limit":  &filter.Limit,
		"offset": &filter.Offset,
	} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return filter, httpx.ErrInvalidRequest(name + " must be a non-negative integer")
			}
			*dst = n
		}
	}

	return filter, nil
}
