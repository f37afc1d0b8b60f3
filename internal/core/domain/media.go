package domain

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("only image files are allowed")
	ErrFileTooLarge         = errors.New("file exceeds the upload size limit")
	ErrMissingImages        = errors.New("both before and after images are required")
)
