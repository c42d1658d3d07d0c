package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListMarkets fetches one page of markets using limit/offset paging.
func (c *Client) ListMarkets(ctx context.Context, opts ListMarketsOptions) (*MarketsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	query.Set("offset", strconv.Itoa(opts.Offset))
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var resp MarketsResponse
	if err := c.getJSON(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("list markets (offset %d): %w", opts.Offset, err)
	}

	return &resp, nil
}
