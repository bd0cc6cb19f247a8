package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jonwraymond/asyncops/runner"
)

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: url})
}

// Post issues a POST request with the given body.
func (c *Client) Post(ctx context.Context, url string, body []byte) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, URL: url, Body: body})
}

// Put issues a PUT request with the given body.
func (c *Client) Put(ctx context.Context, url string, body []byte) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, URL: url, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, URL: url})
}

// DoBatch executes requests concurrently, at most maxConcurrent at a
// time, returning one result per request in input order.
func (c *Client) DoBatch(ctx context.Context, reqs []Request, maxConcurrent int) []runner.Result[*Response] {
	r := runner.New[*Response](runner.Config{
		MaxWorkers: maxConcurrent,
		Events:     c.config.Events,
	})

	tasks := make([]runner.Task[*Response], len(reqs))
	for i, req := range reqs {
		req := req
		tasks[i] = runner.Task[*Response]{
			ID: fmt.Sprintf("req-%d", i),
			Fn: func(ctx context.Context) (*Response, error) {
				return c.Do(ctx, req)
			},
		}
	}

	return r.Run(ctx, tasks)
}

// Download streams the response body for url into w and returns the
// number of bytes written. The breaker and pool apply as in Do, but the
// body is not buffered and the transfer itself is not retried.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	host, err := hostOf(url)
	if err != nil {
		return 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	cb := c.breakers.Get(host)
	if err := cb.Allow(); err != nil {
		return 0, err
	}

	p, err := c.hostPool(host)
	if err != nil {
		cb.CancelTrial()
		return 0, err
	}
	res, err := p.Acquire(ctx)
	if err != nil {
		cb.CancelTrial()
		return 0, err
	}
	defer res.Release()

	httpResp, err := res.Value.hc.Do(httpReq)
	if err != nil {
		cb.RecordFailure()
		res.MarkInvalid()
		return 0, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		if retryableStatus[httpResp.StatusCode] {
			cb.RecordFailure()
		} else {
			cb.RecordSuccess()
		}
		return 0, &StatusError{StatusCode: httpResp.StatusCode, Status: httpResp.Status}
	}

	n, err := io.Copy(w, httpResp.Body)
	if err != nil {
		cb.RecordFailure()
		res.MarkInvalid()
		return n, fmt.Errorf("client: download %s: %w", url, err)
	}

	cb.RecordSuccess()
	return n, nil
}
