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

package event

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Actions with a dedicated template. Anything else renders through the
// generic fallback.
const (
	ActionVisit    = "visit"
	ActionClick    = "click"
	ActionFeedback = "feedback"
	ActionError    = "error"
)

// placeholder stands in for any templated field the caller left out.
const placeholder = "(not set)"

// escaper neutralizes the characters significant to the chat API's HTML
// parse mode. Every interpolated value passes through it, in every branch.
var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Format renders the event as HTML-mode chat text, tagged with the
// requester address and a timestamp.
func Format(e *Inbound, addr string) string {
	var body string
	switch e.Action {
	case ActionVisit:
		body = formatVisit(e)
	case ActionClick:
		body = formatClick(e)
	case ActionFeedback:
		body = formatFeedback(e)
	case ActionError:
		body = formatError(e)
	default:
		body = formatGeneric(e)
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n<b>IP:</b> ")
	b.WriteString(escaper.Replace(addr))
	b.WriteString("\n<b>Time:</b> ")
	b.WriteString(formatTimestamp(e.Timestamp))
	return b.String()
}

func formatVisit(e *Inbound) string {
	return "<b>Page visit</b>\n" +
		"<b>URL:</b> " + field(e, "url") + "\n" +
		"<b>Title:</b> " + field(e, "title") + "\n" +
		"<b>Referrer:</b> " + field(e, "referrer")
}

func formatClick(e *Inbound) string {
	return "<b>Click</b>\n" +
		"<b>Target:</b> " + field(e, "target") + "\n" +
		"<b>URL:</b> " + field(e, "url")
}

func formatFeedback(e *Inbound) string {
	return "<b>Feedback</b>\n" +
		"<b>Name:</b> " + field(e, "name") + "\n" +
		"<b>Contact:</b> " + field(e, "contact") + "\n\n" +
		field(e, "text")
}

func formatError(e *Inbound) string {
	return "<b>Client error</b>\n" +
		"<b>Message:</b> " + field(e, "message") + "\n" +
		"<b>URL:</b> " + field(e, "url")
}

// formatGeneric names the unrecognized action and echoes the whole payload.
// The encoder keeps HTML characters raw so the escaper is the only thing
// rewriting them.
func formatGeneric(e *Inbound) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e.Fields); err != nil {
		buf.Reset()
		buf.WriteString("{}")
	}
	payload := strings.TrimRight(buf.String(), "\n")
	return "<b>Event:</b> " + escaper.Replace(e.Action) +
		"\n<pre>" + escaper.Replace(payload) + "</pre>"
}

// field renders one payload field for interpolation: escaped, or the
// placeholder when absent.
func field(e *Inbound, key string) string {
	v, ok := e.Field(key)
	if !ok {
		return placeholder
	}
	return escaper.Replace(v)
}

// formatTimestamp renders ts in UTC. RFC 3339 and unix-seconds forms are
// accepted; anything else falls back to the formatting time.
func formatTimestamp(ts string) string {
	t := time.Now().UTC()
	if ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			t = parsed.UTC()
		} else if secs, err := strconv.ParseInt(ts, 10, 64); err == nil {
			t = time.Unix(secs, 0).UTC()
		}
	}
	return t.Format("2006-01-02 15:04:05 MST")
}
