package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory-api/internal/domain"
	"user-directory-api/internal/service"
	"user-directory-api/internal/storage"
	"user-directory-api/internal/transport/http/response"
)

// UserHandler exposes the directory CRUD plus CSV export under /api/users.
type UserHandler struct {
	svc *service.UserService
	exp *service.Exporter
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, exp *service.Exporter, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, exp: exp, log: log}
}

func (h *UserHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/export", h.Export)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// GET /api/users?page=&limit=&search=
func (h *UserHandler) List(c *gin.Context) {
	page := atoiDefault(c.Query("page"), service.DefaultPage)
	limit := atoiDefault(c.Query("limit"), service.DefaultLimit)

	res, err := h.svc.List(c.Request.Context(), page, limit, c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(res.Users, response.Pagination{
		Total: res.Total,
		Page:  res.Page,
		Pages: res.Pages,
		Limit: res.Limit,
	}))
}

// GET /api/users/export?search=
func (h *UserHandler) Export(c *gin.Context) {
	path, err := h.exp.ExportCSV(c.Request.Context(), c.Query("search"), baseURL(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			h.log.Warn("remove export temp file", zap.String("path", path), zap.Error(err))
		}
	}()
	c.FileAttachment(path, service.ExportFilename)
}

// GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(u))
}

// POST /api/users (multipart form, optional profileImage file field)
func (h *UserHandler) Create(c *gin.Context) {
	upload, cleanup, err := formUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cleanup()

	u, err := h.svc.Create(c.Request.Context(), formInput(c), upload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OK(u))
}

// PUT /api/users/:id (multipart form, optional profileImage file field)
func (h *UserHandler) Update(c *gin.Context) {
	upload, cleanup, err := formUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer cleanup()

	u, err := h.svc.Update(c.Request.Context(), c.Param("id"), formInput(c), upload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(u))
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Msg("User deleted successfully"))
}

// fail is the single place domain errors become HTTP statuses. Anything
// unrecognized is an infrastructure failure: logged in full, answered
// generically.
func (h *UserHandler) fail(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrEmailTakenByOther),
		errors.Is(err, storage.ErrNotImage),
		errors.Is(err, storage.ErrTooLarge):
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(err.Error()))
	default:
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, response.Error("Internal server error"))
	}
}

// formInput picks up only the fields present in the form, so updates stay
// partial.
func formInput(c *gin.Context) service.UserInput {
	get := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}
	return service.UserInput{
		FirstName: get("firstName"),
		LastName:  get("lastName"),
		Email:     get("email"),
		Mobile:    get("mobile"),
		Gender:    get("gender"),
		Status:    get("status"),
		Location:  get("location"),
	}
}

// formUpload opens the optional profileImage part. The returned cleanup is
// always safe to defer.
func formUpload(c *gin.Context) (*storage.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("profileImage")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &storage.Upload{
		Reader:      f,
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: partContentType(fh),
	}, func() { _ = f.Close() }, nil
}

func partContentType(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
