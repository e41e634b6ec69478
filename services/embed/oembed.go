// Package embed turns video page URLs into embeddable player markup via an oEmbed endpoint.
package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrNoEmbed = errors.New("no embed available for url")

// Result is the subset of an oEmbed response the course pages use.
type Result struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	ProviderName string `json:"provider_name"`
	HTML         string `json:"html"`
	ThumbnailURL string `json:"thumbnail_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Error        string `json:"error,omitempty"`
}

type Resolver struct {
	client   *resty.Client
	endpoint string
}

func New(endpoint string, timeout time.Duration) *Resolver {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(1).
		SetHeader("Accept", "application/json")
	return &Resolver{client: client, endpoint: endpoint}
}

// Resolve asks the oEmbed endpoint for videoURL's player markup.
func (r *Resolver) Resolve(ctx context.Context, videoURL string) (*Result, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":    videoURL,
			"format": "json",
		}).
		SetResult(&Result{}).
		Get(r.endpoint)
	if err != nil {
		return nil, fmt.Errorf("oembed request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("oembed %s: status %d", videoURL, resp.StatusCode())
	}

	res, ok := resp.Result().(*Result)
	if !ok || res.Error != "" || res.HTML == "" {
		return nil, ErrNoEmbed
	}
	return res, nil
}
