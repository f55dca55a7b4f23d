package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func sabnzbdURL(target Target) string {
	return strings.TrimRight(strings.TrimSpace(target.APIURL), "/") + "/api"
}

func (c *Client) sabnzbdGet(ctx context.Context, target Target, params url.Values) ([]byte, error) {
	params.Set("output", "json")
	params.Set("apikey", target.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sabnzbdURL(target)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from SABnzbd", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func (c *Client) testSabnzbd(ctx context.Context, target Target) (bool, string) {
	params := url.Values{}
	params.Set("mode", "queue")
	body, err := c.sabnzbdGet(ctx, target, params)
	if err != nil {
		return false, fmt.Sprintf("request failed: %v", err)
	}

	var payload struct {
		Status *bool  `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false, "unexpected SABnzbd response"
	}
	if payload.Status != nil && !*payload.Status {
		message := payload.Error
		if message == "" {
			message = "SABnzbd reported failure"
		}
		return false, message
	}
	return true, "SABnzbd OK"
}

func (c *Client) sendSabnzbd(ctx context.Context, target Target, nzbURL, title, category string, priority int) (bool, string) {
	params := url.Values{}
	params.Set("mode", "addurl")
	params.Set("name", nzbURL)
	if category != "" {
		params.Set("cat", category)
	}
	if priority != 0 {
		params.Set("priority", strconv.Itoa(priority))
	}
	if title != "" {
		params.Set("nzbname", title)
	}

	body, err := c.sabnzbdGet(ctx, target, params)
	if err != nil {
		return false, fmt.Sprintf("request failed: %v", err)
	}

	var payload struct {
		Status bool   `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false, "unexpected SABnzbd response"
	}
	if payload.Status {
		return true, "sent to SABnzbd"
	}
	if payload.Error != "" {
		return false, payload.Error
	}
	return false, "SABnzbd rejected request"
}

func (c *Client) historySabnzbd(ctx context.Context, target Target, limit int) ([]HistoryEntry, error) {
	params := url.Values{}
	params.Set("mode", "history")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.sabnzbdGet(ctx, target, params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		History struct {
			Slots []struct {
				Name   string `json:"name"`
				Status string `json:"status"`
			} `json:"slots"`
		} `json:"history"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse SABnzbd history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(payload.History.Slots))
	for _, slot := range payload.History.Slots {
		entries = append(entries, HistoryEntry{
			Name:   slot.Name,
			Status: strings.ToLower(strings.TrimSpace(slot.Status)),
		})
	}
	return entries, nil
}
