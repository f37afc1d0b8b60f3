package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/groompost/groompost-api/internal/api/metrics"
	"github.com/groompost/groompost-api/internal/core/domain"
	"github.com/groompost/groompost-api/internal/core/ports"
)

const (
	beforeImageField = "beforeImage"
	afterImageField  = "afterImage"
)

// MediaHandler handles image uploads and caption generation.
type MediaHandler struct {
	media     ports.MediaService
	captions  ports.CaptionService
	publisher ports.Publisher
}

func NewMediaHandler(media ports.MediaService, captions ports.CaptionService, publisher ports.Publisher) *MediaHandler {
	return &MediaHandler{media: media, captions: captions, publisher: publisher}
}

// Upload stores a before/after image pair.
//
// @Summary      Upload before/after images
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        beforeImage  formData  file  true  "Image before grooming"
// @Param        afterImage   formData  file  true  "Image after grooming"
// @Success      200          {object}  uploadResponse
// @Failure      400          {object}  ErrorResponse
// @Failure      401          {object}  ErrorResponse
// @Failure      500          {object}  ErrorResponse
// @Router       /api/upload [post]
func (h *MediaHandler) Upload(c echo.Context) error {
	before, err := formFile(c, beforeImageField)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return err
	}
	after, err := formFile(c, afterImageField)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	beforeFile, err := open(before)
	if err != nil {
		return err
	}
	defer beforeFile.Close()
	afterFile, err := open(after)
	if err != nil {
		return err
	}
	defer afterFile.Close()

	result, err := h.media.Upload(c.Request().Context(),
		uploadFile(before, beforeFile),
		uploadFile(after, afterFile),
	)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(uploadResult(err)).Inc()
		return err
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, uploadResponse{
		BeforeImageURL: result.BeforeImageURL,
		AfterImageURL:  result.AfterImageURL,
	})
}

// GenerateCaption asks the text model for an Instagram caption.
//
// @Summary      Generate a caption
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        body  body      captionRequest  true  "Dog and service details"
// @Success      200   {object}  captionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/generate-caption [post]
func (h *MediaHandler) GenerateCaption(c echo.Context) error {
	var req captionRequest
	if err := bind(c, &req); err != nil {
		metrics.CaptionsGeneratedTotal.WithLabelValues("invalid").Inc()
		return err
	}

	caption, err := h.captions.Generate(c.Request().Context(), domain.CaptionRequest{
		DogName:         req.DogName,
		GroomingService: req.GroomingService,
		Notes:           req.Notes,
		Tags:            req.Tags,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.CaptionsGeneratedTotal.WithLabelValues("invalid").Inc()
		} else {
			metrics.CaptionsGeneratedTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.CaptionsGeneratedTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, captionResponse{Caption: caption})
}

// InstagramStatus reports whether publishing is configured and whether the
// Instagram account has been discovered.
//
// @Summary      Instagram publishing status
// @Tags         media
// @Produce      json
// @Success      200  {object}  instagramStatusResponse
// @Router       /api/instagram/status [get]
func (h *MediaHandler) InstagramStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, instagramStatusResponse{
		Configured: h.publisher.Configured(),
		Ready:      h.publisher.Ready(),
	})
}

func formFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, domain.ErrMissingImages
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	return fh, nil
}

func open(fh *multipart.FileHeader) (multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable upload: "+fh.Filename)
	}
	return f, nil
}

func uploadFile(fh *multipart.FileHeader, body multipart.File) *ports.UploadFile {
	return &ports.UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        body,
	}
}

func uploadResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnsupportedMediaType),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrMissingImages):
		return "rejected"
	default:
		return "error"
	}
}
