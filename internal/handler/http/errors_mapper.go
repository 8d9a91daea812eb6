package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/tune-keeper/internal/adapter"
	"github.com/MKhiriev/tune-keeper/internal/service"
	"github.com/MKhiriev/tune-keeper/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrSyncInProgress: http.StatusConflict,
	service.ErrNotStarted:     http.StatusServiceUnavailable,

	adapter.ErrUnauthorized:      http.StatusUnauthorized,
	adapter.ErrRemoteUnavailable: http.StatusBadGateway,

	store.ErrRecordNotFound:     http.StatusNotFound,
	store.ErrRecordNotSaved:     http.StatusInternalServerError,
	store.ErrStorageUnavailable: http.StatusInternalServerError,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
