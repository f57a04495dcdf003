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

// Package topic maps client addresses to conversation threads in the
// destination chat.
//
// Two mutually exclusive resolvers implement the mapping: HashResolver
// derives ids locally and never touches the network; RemoteResolver finds or
// creates real topics through the chat API. TOPIC_RESOLVER selects one at
// startup.
package topic

import "context"

// Resolver maps a client address to a thread id. A zero id means the chat's
// default channel. Resolution never fails a request: implementations absorb
// lookup errors and degrade to the default channel.
type Resolver interface {
	Resolve(ctx context.Context, addr string) int64
}
