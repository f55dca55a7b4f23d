package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type nzbgetRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
}

func (c *Client) nzbgetCall(ctx context.Context, target Target, method string, params []any) (json.RawMessage, error) {
	payload, err := json.Marshal(nzbgetRequest{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := strings.TrimRight(strings.TrimSpace(target.APIURL), "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if target.APIKey != "" {
		req.SetBasicAuth(target.APIKey, "")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from NZBGet", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpc struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &rpc); err != nil {
		return nil, fmt.Errorf("parse NZBGet response: %w", err)
	}
	if rpc.Error != nil {
		return nil, fmt.Errorf("NZBGet error: %s", rpc.Error.Message)
	}
	return rpc.Result, nil
}

func (c *Client) testNzbget(ctx context.Context, target Target) (bool, string) {
	result, err := c.nzbgetCall(ctx, target, "version", nil)
	if err != nil {
		return false, fmt.Sprintf("request failed: %v", err)
	}
	var version string
	if err := json.Unmarshal(result, &version); err != nil || version == "" {
		return false, "unexpected NZBGet response"
	}
	return true, "NZBGet " + version
}

func (c *Client) sendNzbget(ctx context.Context, target Target, nzbURL, title, category string, priority int) (bool, string) {
	params := []any{title, nzbURL, category, priority, false, title, 0, "score"}
	result, err := c.nzbgetCall(ctx, target, "appendurl", params)
	if err != nil {
		return false, fmt.Sprintf("request failed: %v", err)
	}

	// appendurl returns a queue id on newer servers and a bool on older ones.
	var id int64
	if err := json.Unmarshal(result, &id); err == nil {
		if id > 0 {
			return true, "sent to NZBGet"
		}
		return false, "NZBGet rejected request"
	}
	var ok bool
	if err := json.Unmarshal(result, &ok); err == nil && ok {
		return true, "sent to NZBGet"
	}
	return false, "NZBGet rejected request"
}

func (c *Client) historyNzbget(ctx context.Context, target Target, limit int) ([]HistoryEntry, error) {
	result, err := c.nzbgetCall(ctx, target, "history", nil)
	if err != nil {
		return nil, err
	}

	var items []struct {
		NZBName string `json:"NZBName"`
		Status  string `json:"Status"`
	}
	if err := json.Unmarshal(result, &items); err != nil {
		return nil, fmt.Errorf("parse NZBGet history: %w", err)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	entries := make([]HistoryEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, HistoryEntry{
			Name:   item.NZBName,
			Status: normalizeNzbgetStatus(item.Status),
		})
	}
	return entries, nil
}

// normalizeNzbgetStatus folds compound statuses like "SUCCESS/ALL" and
// "FAILURE/PAR" down to their leading word in lowercase.
func normalizeNzbgetStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if head, _, found := strings.Cut(status, "/"); found {
		return head
	}
	return status
}
