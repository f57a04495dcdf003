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

// Package event models the inbound payload and renders it into chat text.
package event

import (
	"encoding/json"
	"strconv"
)

// Inbound is the schema-free payload posted to the relay: an action tag, an
// optional timestamp, and whatever other fields the caller includes. Fields
// keeps the complete raw object so unrecognized payloads can be echoed
// verbatim.
type Inbound struct {
	Action    string
	Timestamp string
	Fields    map[string]interface{}
}

// UnmarshalJSON accepts any JSON object. Only action and timestamp are
// pulled out; nothing else is validated.
func (e *Inbound) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Fields = raw

	if v, ok := raw["action"].(string); ok {
		e.Action = v
	}
	switch v := raw["timestamp"].(type) {
	case string:
		e.Timestamp = v
	case float64:
		// JSON numbers arrive as float64; keep unix-seconds form.
		e.Timestamp = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return nil
}

// Field returns the named field rendered as text. ok is false when the
// field is absent, null, or an empty string.
func (e *Inbound) Field(key string) (string, bool) {
	v, ok := e.Fields[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
