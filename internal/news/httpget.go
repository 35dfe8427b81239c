package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	// maxResponseBytes はプロバイダのレスポンスとして読み込む最大バイト数。
	maxResponseBytes = 5 << 20
	userAgent        = "Newsman/1.0 (+https://github.com/hitoshi/newsman)"
)

// get はGETリクエストを送り、2xxのレスポンスボディを返す。
func get(ctx context.Context, client *http.Client, provider, reqURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", provider, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 接続を再利用できるよう残りを捨てる
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Provider: provider, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", provider, err)
	}
	return body, nil
}

// getJSON はGETしたレスポンスをdstにデコードする。
func getJSON(ctx context.Context, client *http.Client, provider, reqURL string, header http.Header, dst any) error {
	body, err := get(ctx, client, provider, reqURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &DecodeError{Provider: provider, Err: err}
	}
	return nil
}
