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

// Package relay ties thread resolution, formatting, and delivery together:
// one inbound event in, one chat message out.
package relay

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jredh-dev/relay/internal/botapi"
	"github.com/jredh-dev/relay/internal/event"
	"github.com/jredh-dev/relay/internal/topic"
)

// Messenger is the delivery half of the bot API the service needs.  Tests
// inject a mock; production passes the botapi client.
type Messenger interface {
	SendMessage(ctx context.Context, text string, threadID int64) (*botapi.Message, error)
}

// Receipt reports one accepted delivery back to the caller.
type Receipt struct {
	// DeliveryID is a server-generated UUID for correlating a caller's
	// request with the relay's logs.
	DeliveryID string `json:"delivery_id"`

	// ThreadID is the forum thread the message landed in; zero means the
	// chat's default channel.
	ThreadID int64 `json:"thread_id,omitempty"`

	// MessageID is the chat API's id for the delivered message.
	MessageID int64 `json:"message_id"`
}

// Service relays inbound events into the chat, one message per event,
// threaded by requester address.
type Service struct {
	messenger Messenger
	resolver  topic.Resolver
}

// New creates a Service that delivers through messenger into threads chosen
// by resolver.
func New(messenger Messenger, resolver topic.Resolver) *Service {
	return &Service{
		messenger: messenger,
		resolver:  resolver,
	}
}

// Relay resolves the thread for addr, renders e as chat text, and sends it.
// Resolution never fails (it degrades to the default channel), so the only
// error path is delivery itself.
func (s *Service) Relay(ctx context.Context, addr string, e *event.Inbound) (*Receipt, error) {
	threadID := s.resolver.Resolve(ctx, addr)
	text := event.Format(e, addr)

	msg, err := s.messenger.SendMessage(ctx, text, threadID)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	receipt := &Receipt{
		DeliveryID: uuid.New().String(),
		ThreadID:   threadID,
		MessageID:  msg.MessageID,
	}
	log.Printf("relayed action=%q from=%s to thread %d (message %d)", e.Action, addr, threadID, msg.MessageID)
	return receipt, nil
}
