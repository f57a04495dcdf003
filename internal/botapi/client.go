// relay - website event relay for Telegram forum threads
// Copyright (C) 2026  jredh-dev contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// Package botapi talks to the bot-messaging HTTP API via stdlib net/http
// only — no SDK dependency.
//
// The API wraps every response in the same envelope: {"ok": bool, "result":
// ..., "error_code": int, "description": string}. A transport-level success
// with ok=false is a logical failure and surfaces as *APIError so callers
// can inspect the remote description.
package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jredh-dev/relay/internal/metrics"
)

// DefaultBaseURL is the hosted bot API. Tests point BaseURL at a local
// httptest server instead.
const DefaultBaseURL = "https://api.telegram.org"

// maxErrBody caps how much of an unexpected response body is echoed into
// error messages.
const maxErrBody = 256

// Client sends messages and manages forum topics in one destination chat.
type Client struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
}

// New creates a Client for the given chat. An empty baseURL selects the
// hosted API.
func New(baseURL, token, chatID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a logical failure reported inside the response envelope.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bot api error %d: %s", e.Code, e.Description)
}

// Message captures just the fields of a sent message the relay cares about.
type Message struct {
	MessageID int64 `json:"message_id"`
	ThreadID  int64 `json:"message_thread_id,omitempty"`
}

// Topic is one conversation thread inside the destination chat.
type Topic struct {
	ThreadID int64  `json:"message_thread_id"`
	Name     string `json:"name"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
	ThreadID  int64  `json:"message_thread_id,omitempty"`
}

// SendMessage posts text into the chat. A zero threadID targets the chat's
// default channel and is omitted from the request.
func (c *Client) SendMessage(ctx context.Context, text string, threadID int64) (*Message, error) {
	var msg Message
	err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: "HTML",
		ThreadID:  threadID,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

type listTopicsRequest struct {
	ChatID   string `json:"chat_id"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type listTopicsResult struct {
	Topics []Topic `json:"topics"`
}

// ListTopics returns one page of the chat's topic directory. Pages are
// numbered from 1.
func (c *Client) ListTopics(ctx context.Context, page, pageSize int) ([]Topic, error) {
	var result listTopicsResult
	err := c.call(ctx, "getForumTopics", listTopicsRequest{
		ChatID:   c.chatID,
		Page:     page,
		PageSize: pageSize,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Topics, nil
}

type createTopicRequest struct {
	ChatID string `json:"chat_id"`
	Name   string `json:"name"`
}

// CreateTopic opens a new named topic in the chat and returns it.
func (c *Client) CreateTopic(ctx context.Context, name string) (*Topic, error) {
	var topic Topic
	err := c.call(ctx, "createForumTopic", createTopicRequest{
		ChatID: c.chatID,
		Name:   name,
	}, &topic)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// call performs one POST to the named API method and decodes the envelope
// into result (which may be nil).
func (c *Client) call(ctx context.Context, method string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bot"+c.token+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveBotCall(method, time.Since(start))
	if err != nil {
		// url.Error echoes the full request URL, token included — surface
		// only the underlying cause.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("%s: unexpected content type %q: %s", method, ct, truncate(respBody))
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("%s: decode response: %s", method, truncate(respBody))
	}
	if !envelope.OK {
		return &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

func truncate(b []byte) string {
	if len(b) <= maxErrBody {
		return string(b)
	}
	return string(b[:maxErrBody]) + "..."
}
