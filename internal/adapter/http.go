package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/tune-keeper/internal/config"
	"github.com/MKhiriev/tune-keeper/internal/logger"
	"github.com/MKhiriev/tune-keeper/models"
)

// TokenSource yields the bearer token for the current signed-in user, or an
// empty string when no session exists.
type TokenSource func(ctx context.Context) string

// restRemoteStore talks to a PostgREST-style backend: one REST resource per
// table under /rest/v1, owner scoping and soft-delete filters expressed as
// query parameters, upserts via the Prefer header.
type restRemoteStore struct {
	client *resty.Client
	apiKey string
	tokens TokenSource

	logger *logger.Logger
}

// NewRESTRemoteStore constructs a [RemoteStore] over the backend described by
// remoteCfg. The token source is consulted on every request so token rotation
// needs no adapter restart.
//
// Returns an error if remoteCfg.BaseURL is empty or cannot be parsed as a
// valid URL.
func NewRESTRemoteStore(remoteCfg config.Remote, tokens TokenSource, logger *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(remoteCfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote base url: %w", err)
	}

	timeout := remoteCfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &restRemoteStore{
		client: client,
		apiKey: remoteCfg.APIKey,
		tokens: tokens,
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// UpsertMany implements [RemoteStore]. Rows are merged server-side on the
// table's unique key, so re-uploading unchanged records is harmless.
func (r *restRemoteStore) UpsertMany(ctx context.Context, d models.EntityDescriptor, ownerID string, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	resp, err := r.authedRequest(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(encodeRecords(d, ownerID, records)).
		Post("/rest/v1/" + d.RemoteTable)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %w", ErrRemoteUnavailable, d.RemoteTable, err)
	}

	return mapHTTPError(resp)
}

// InsertMany implements [RemoteStore]. Rows are appended as-is; the engine
// guarantees it only sends rows absent from the remote.
func (r *restRemoteStore) InsertMany(ctx context.Context, d models.EntityDescriptor, ownerID string, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	resp, err := r.authedRequest(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(encodeRecords(d, ownerID, records)).
		Post("/rest/v1/" + d.RemoteTable)
	if err != nil {
		return fmt.Errorf("%w: insert %s: %w", ErrRemoteUnavailable, d.RemoteTable, err)
	}

	return mapHTTPError(resp)
}

// QueryAll implements [RemoteStore].
func (r *restRemoteStore) QueryAll(ctx context.Context, d models.EntityDescriptor, ownerID string, filter QueryFilter) ([]models.RemoteRecord, error) {
	req := r.authedRequest(ctx).
		SetQueryParam(remoteColumnOwner, "eq."+ownerID)

	if filter.NotDeleted {
		req.SetQueryParam("is_deleted", "eq.false")
	}
	if filter.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(filter.Limit))
		req.SetQueryParam("order", remoteColumnCreatedAt+".desc")
	}

	resp, err := req.Get("/rest/v1/" + d.RemoteTable)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", ErrRemoteUnavailable, d.RemoteTable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err = json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", d.RemoteTable, err)
	}

	return decodeRows(d, rows)
}

func (r *restRemoteStore) authedRequest(ctx context.Context) *resty.Request {
	req := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if r.apiKey != "" {
		req.SetHeader("apikey", r.apiKey)
	}
	if token := r.tokens(ctx); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return ErrUnauthorized
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("%w: http %d: %s", ErrRemoteUnavailable, resp.StatusCode(), body)
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}
