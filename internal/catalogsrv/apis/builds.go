package apis

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rigforge/rigforge/internal/catalogsrv/catalogmanager"
	"github.com/rigforge/rigforge/internal/common/httpx"
)

func createBuild(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	if r.Body == nil {
		return nil, httpx.ErrInvalidRequest("request body is required")
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, httpx.ErrUnableToReadRequest()
	}

	bm, aerr := catalogmanager.NewBuildManager(ctx, body)
	if aerr != nil {
		return nil, aerr
	}
	if aerr := bm.Save(ctx); aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/builds/" + bm.ID().String(),
		Response:   bm.ToAPI(),
	}, nil
}

func listBuilds(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	builds, err := catalogmanager.ListBuilds(ctx)
	if err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   builds,
	}, nil
}

func getBuild(r *http.Request) (*httpx.Response, error) {
	bm, err := loadBuildFromPath(r)
	if err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   bm.ToAPI(),
	}, nil
}

func updateBuild(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	if r.Body == nil {
		return nil, httpx.ErrInvalidRequest("request body is required")
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, httpx.ErrUnableToReadRequest()
	}

	bm, aerr := loadBuildFromPath(r)
	if aerr != nil {
		return nil, aerr
	}
	if aerr := bm.Update(ctx, body); aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   bm.ToAPI(),
	}, nil
}

func deleteBuild(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	bm, err := loadBuildFromPath(r)
	if err != nil {
		return nil, err
	}
	if err := bm.Delete(ctx); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusNoContent,
		Response:   nil,
	}, nil
}

func approveBuild(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	bm, err := loadBuildFromPath(r)
	if err != nil {
		return nil, err
	}
	if err := bm.Approve(ctx); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   bm.ToAPI(),
	}, nil
}

func publishBuild(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	bm, err := loadBuildFromPath(r)
	if err != nil {
		return nil, err
	}
	if err := bm.Publish(ctx); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   bm.ToAPI(),
	}, nil
}

func getBuildPrice(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	bm, err := loadBuildFromPath(r)
	if err != nil {
		return nil, err
	}
	price, aerr := bm.Price(ctx)
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   price,
	}, nil
}

func getBuildCompat(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	bm, err := loadBuildFromPath(r)
	if err != nil {
		return nil, err
	}
	report, aerr := bm.CheckCompat(ctx)
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   report,
	}, nil
}

func loadBuildFromPath(r *http.Request) (catalogmanager.BuildManager, error) {
	buildID, err := catalogmanager.ParseBuildID(chi.URLParam(r, "buildID"))
	if err != nil {
		return nil, err
	}
	return catalogmanager.LoadBuildManager(r.Context(), buildID)
}
