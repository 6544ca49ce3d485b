package fetchers

import (
	"errors"
	"net/http"
)

const (
	BCBURL = "https://www4.bcb.gov.br/Download/fechamento"

	fieldSeparator = ';'
)

var (
	ErrNotFound       = errors.New("no quotes published for this date")
	ErrClient         = errors.New("client error")
	ErrServer         = errors.New("server error")
	ErrUnknown        = errors.New("unknown error")
	ErrMalformed      = errors.New("malformed quote table")
	ErrColumnMismatch = errors.New("column count does not match the quote table schema")
)

func handleHTTPStatusCodeError(res *http.Response) error {
	if res.StatusCode == http.StatusOK {
		return nil
	}

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError:
		return ErrClient
	case res.StatusCode >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrUnknown
	}
}
