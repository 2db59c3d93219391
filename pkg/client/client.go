// Package client calls a running foodflow service.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"foodflow/pkg/food"
)

// Client is a typed wrapper over the food HTTP API.
type Client struct {
	r *resty.Client
}

// New returns a client for the service at baseURL.
func New(baseURL string) *Client {
	return &Client{r: resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json"),
	}
}

// Login opens a session; later calls carry the session cookie.
func (c *Client) Login(ctx context.Context, user, password string) error {
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": user, "password": password}).
		Post("/login")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("POST /login: %s", resp.String())
	}
	c.r.SetCookies(resp.Cookies())
	return nil
}

func (c *Client) List(ctx context.Context, size int) ([]food.Record, error) {
	var out []food.Record
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParam("size", strconv.Itoa(size)).
		SetResult(&out).
		Get("/food/all")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /food/all: %s", resp.String())
	}
	return out, nil
}

// Get returns nil when the record does not exist.
func (c *Client) Get(ctx context.Context, id, partitionKey string) (*food.Record, error) {
	var out *food.Record
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"id": id, "partitionKey": partitionKey}).
		SetResult(&out).
		Get("/food")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /food: %s", resp.String())
	}
	return out, nil
}

func (c *Client) Query(ctx context.Context, q string) ([]food.Record, error) {
	var out []food.Record
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParam("query", q).
		SetResult(&out).
		Get("/food/GetByQuery")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /food/GetByQuery: %s", resp.String())
	}
	return out, nil
}

// Add creates rec and returns it with the ID assigned by the service.
func (c *Client) Add(ctx context.Context, rec food.Record) (food.Record, error) {
	var out food.Record
	resp, err := c.r.R().
		SetContext(ctx).
		SetBody(rec).
		SetResult(&out).
		Post("/food")
	if err != nil {
		return out, err
	}
	if resp.StatusCode() != http.StatusCreated {
		return out, fmt.Errorf("POST /food: %s", resp.String())
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id, partitionKey string) error {
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"id": id, "partitionKey": partitionKey}).
		Delete("/food")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("DELETE /food: %s", resp.String())
	}
	return nil
}

// PageOptions selects a page. Offset switches to OFFSET/LIMIT paging.
type PageOptions struct {
	Page         int
	RowsPerPage  int
	PartitionKey string
	Continuation string
	Offset       bool
}

func (c *Client) Page(ctx context.Context, opts PageOptions) (food.PagedResult[food.Record], error) {
	var out food.PagedResult[food.Record]
	path := "/food/paging"
	if opts.Offset {
		path = "/food/paging/offset"
	}
	req := c.r.R().SetContext(ctx).SetResult(&out)
	if opts.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(opts.Page))
	}
	if opts.RowsPerPage > 0 {
		req.SetQueryParam("rowsPerPage", strconv.Itoa(opts.RowsPerPage))
	}
	if opts.PartitionKey != "" {
		req.SetQueryParam("partitionKey", opts.PartitionKey)
	}
	if opts.Continuation != "" && !opts.Offset {
		req.SetQueryParam("continuationToken", opts.Continuation)
	}
	resp, err := req.Get(path)
	if err != nil {
		return out, err
	}
	if resp.StatusCode() != http.StatusOK {
		return out, fmt.Errorf("GET %s: %s", path, resp.String())
	}
	return out, nil
}
