package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/storefront/internal/httperr"
	"github.com/BruksfildServices01/storefront/internal/imaging"
	"github.com/BruksfildServices01/storefront/internal/logging"
	"github.com/BruksfildServices01/storefront/internal/storage"
)

const maxImageBytes = 5 << 20

type imageUploader struct {
	store storage.Storage
}

func newImageUploader(store storage.Storage) *imageUploader {
	return &imageUploader{store: store}
}

// upload stores the multipart "image" field as WebP under folder and returns
// its URL. On failure the response has been written.
func (u *imageUploader) upload(c *gin.Context, folder string) (string, bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		httperr.Invalid(c, httperr.Field("image", "The image field is required."))
		return "", false
	}
	if fh.Size > maxImageBytes {
		httperr.Invalid(c, httperr.Field("image", fmt.Sprintf(
			"The image field must not be greater than %d kilobytes.", maxImageBytes>>10)))
		return "", false
	}

	f, err := fh.Open()
	if err != nil {
		serverError(c, "image_read_failed", "Failed to read the uploaded image.", err)
		return "", false
	}
	defer f.Close()

	data, err := imaging.Normalize(f)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupported) {
			httperr.Invalid(c, httperr.Field("image", "The image field must be an image."))
			return "", false
		}
		httperr.Invalid(c, httperr.Field("image", "The image could not be processed."))
		return "", false
	}

	key := storage.ObjectKey(folder, imaging.Extension)
	url, err := u.store.Put(c.Request.Context(), key, bytes.NewReader(data), int64(len(data)), imaging.ContentType)
	if err != nil {
		serverError(c, "image_store_failed", "Failed to store the image.", err)
		return "", false
	}
	return url, true
}

// remove deletes an image this storage owns. Failures are only logged.
func (u *imageUploader) remove(ctx context.Context, url string) {
	key, ok := storage.KeyFromURL(u.store.PublicURL(), url)
	if !ok {
		return
	}
	if err := u.store.Delete(ctx, key); err != nil {
		logging.FromContext(ctx).Warn("image delete failed", "key", key, "error", err)
	}
}
