package error

import "net/http"

// GenericError is implemented by every error that knows its HTTP mapping
type GenericError interface {
	ErrCode() string
	Error() string
	StatusCode() int
}

type ValidationError string

func (err ValidationError) Error() string   { return string(err) }
func (err ValidationError) ErrCode() string { return "VALIDATION_ERROR" }
func (err ValidationError) StatusCode() int { return http.StatusBadRequest }

type ParseError string

func (err ParseError) Error() string   { return "Parse failed: " + string(err) }
func (err ParseError) ErrCode() string { return "PARSE_ERROR" }
func (err ParseError) StatusCode() int { return http.StatusBadRequest }

type ConflictError string

func (err ConflictError) Error() string   { return string(err) }
func (err ConflictError) ErrCode() string { return "CONFLICT" }
func (err ConflictError) StatusCode() int { return http.StatusConflict }

type NotFoundError string

func (err NotFoundError) Error() string   { return string(err) }
func (err NotFoundError) ErrCode() string { return "NOT_FOUND" }
func (err NotFoundError) StatusCode() int { return http.StatusNotFound }

type ServiceUnavailableError string

func (err ServiceUnavailableError) Error() string   { return string(err) }
func (err ServiceUnavailableError) ErrCode() string { return "SERVICE_UNAVAILABLE" }
func (err ServiceUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

type InternalServerError string

func (err InternalServerError) Error() string   { return string(err) }
func (err InternalServerError) ErrCode() string { return "INTERNAL_SERVER_ERROR" }
func (err InternalServerError) StatusCode() int { return http.StatusInternalServerError }
