package model

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sygra-go/sygra/types"
)

// Do builds an *http.Request from req and params, dispatches it, and
// returns the observed status code and body. Network/timeout failures
// return err; callers recover a synthetic status from the body when
// possible (statusFromBody) before falling back to 999 (spec §7 "parse
// error").
func (t *httpTransport) Do(ctx context.Context, params types.ModelParams, req WireRequest) (int, []byte, error) {
	url := params.URL + req.Path
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(req.Body))
	if err != nil {
		return 0, nil, fmt.Errorf("build http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}
	if params.AuthToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+params.AuthToken)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("dispatch request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
