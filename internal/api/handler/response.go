package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maho-na510/aquarium-visit-log/internal/api/dto"
	"github.com/maho-na510/aquarium-visit-log/internal/api/service"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// uploadTimeout bounds handlers that write blobs.
const uploadTimeout = 60 * time.Second

func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Messages})
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrAdminRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "見つかりません"})
	case errors.Is(err, service.ErrPhotoNotFound),
		errors.Is(err, service.ErrHeaderPhotoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrLocationRequired),
		errors.Is(err, service.ErrPhotosRequired),
		errors.Is(err, service.ErrPhotoIDRequired),
		errors.Is(err, service.ErrAvatarRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON binds the request body. Binding tag failures answer 422 like
// service validation; a malformed body answers 400.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	if msgs, ok := dto.ValidationMessages(err); ok {
		respondError(c, &service.ValidationError{Messages: msgs})
		return false
	}
	respondBodyError(c, err)
	return false
}

// respondBodyError answers 413 when the body went over the size cap and 400
// for any other unreadable body.
func respondBodyError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("リクエストが大きすぎます(上限 %d バイト)", tooLarge.Limit),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// paramID parses a positive integer path parameter. Unknown ids render 404
// the same way a missing row does.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "見つかりません"})
		return 0, false
	}
	return id, true
}

// queryInt returns the integer query parameter, or 0 when absent or malformed.
func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	return n
}

// queryIntPtr is queryInt for parameters where absence differs from zero.
func queryIntPtr(c *gin.Context, name string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return nil
	}
	return &n
}

func queryFloatPtr(c *gin.Context, name string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(c.Query(name)), 64)
	if err != nil {
		return nil
	}
	return &f
}

// queryBoolPtr understands the usual truthy and falsy spellings.
func queryBoolPtr(c *gin.Context, name string) *bool {
	var b bool
	switch strings.ToLower(strings.TrimSpace(c.Query(name))) {
	case "true", "1", "yes", "on":
		b = true
	case "false", "0", "no", "off":
		b = false
	default:
		return nil
	}
	return &b
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formFiles collects the files sent as field, field[] or field[n], in that
// key order.
func formFiles(form *multipart.Form, field string) []service.Upload {
	if form == nil {
		return nil
	}
	keys := make([]string, 0, len(form.File))
	for key := range form.File {
		if key == field || strings.HasPrefix(key, field+"[") {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return bracketLess(keys[i], keys[j]) })

	var uploads []service.Upload
	for _, key := range keys {
		for _, fh := range form.File[key] {
			uploads = append(uploads, newUpload(fh))
		}
	}
	return uploads
}

// bracketLess orders photos[2] before photos[10].
func bracketLess(a, b string) bool {
	ai, aerr := strconv.Atoi(strings.Trim(a[strings.IndexByte(a+"[", '['):], "[]"))
	bi, berr := strconv.Atoi(strings.Trim(b[strings.IndexByte(b+"[", '['):], "[]"))
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

func newUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// formValue reads a scalar form field; ok is false when it was not sent.
func formValue(form *multipart.Form, key string) (string, bool) {
	if form == nil {
		return "", false
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// formValues reads key[] (or key) as a list; ok is false when neither was sent.
func formValues(form *multipart.Form, key string) ([]string, bool) {
	if form == nil {
		return nil, false
	}
	if values, ok := form.Value[key+"[]"]; ok {
		return values, true
	}
	values, ok := form.Value[key]
	return values, ok
}
