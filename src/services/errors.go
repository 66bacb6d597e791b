package services

import "errors"

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrNotFound                 = errors.New("not found")
	ErrAssetNotFound            = notFoundError("asset not found")
	ErrInsufficientHoldings     = errors.New("cannot sell more quantity than held in portfolio")
	ErrPersistence              = errors.New("persistence failure")
	ErrPriceProviderUnavailable = errors.New("price provider unavailable")
	ErrConflict                 = errors.New("conflict")
	ErrUnauthorized             = errors.New("unauthorized")
)

// notFoundError is a specific not-found error that still matches ErrNotFound.
type notFoundError string

func (e notFoundError) Error() string { return string(e) }

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }
