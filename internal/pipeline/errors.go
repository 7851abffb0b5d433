package pipeline

import "errors"

var (
	ErrCompositeFailed = errors.New("could not compose print sheet")
	ErrArchiveFailed   = errors.New("could not build archive")
)
