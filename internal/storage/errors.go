package storage

import "errors"

var (
	ErrFileNotFound = errors.New("file not found")
	ErrDealNotFound = errors.New("deal not found")
)
