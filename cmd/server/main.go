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

// relay accepts website events over HTTP and forwards them into a Telegram
// chat, one forum thread per visitor IP.
//
// Configuration is done entirely via environment variables so the binary runs
// identically in Docker, on bare metal, or in any CI environment:
//
//	PORT                       listen port (default "8080")
//	ENV                        deployment environment name (default "development")
//	BOT_TOKEN                  Telegram bot token
//	CHAT_ID                    target chat id, e.g. "-1001234567890"
//	BOT_API_URL                bot API base URL (default "https://api.telegram.org")
//	TOPIC_RESOLVER             "remote" or "hash" (default "remote")
//	TOPIC_OVERRIDES            hash mode: pinned "ip:threadId" pairs, comma-separated
//	THREAD_STORE               remote mode: "memory", "redis", "postgres", or "firestore" (default "memory")
//	REDIS_ADDR                 redis store: address (default "localhost:6379")
//	REDIS_PASSWORD             redis store: password, empty for none
//	DB_URL                     postgres store: connection string
//	FIRESTORE_PROJECT_ID       firestore store: GCP project id
//	FIRESTORE_CREDENTIALS_PATH firestore store: service account key file, empty for ADC
//	FIRESTORE_COLLECTION       firestore store: collection name (default "ip-threads")
//
// BOT_TOKEN and CHAT_ID are required for delivery.  The server still starts
// without them and answers /relay with an error until both are set, so a
// half-configured deploy stays observable instead of crash-looping.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jredh-dev/relay/config"
	"github.com/jredh-dev/relay/internal/handlers"
	"github.com/jredh-dev/relay/internal/httpserver"
	"github.com/jredh-dev/relay/internal/relay"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("relay %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	cfg := config.Load()
	if !cfg.Configured() {
		log.Println("WARNING: BOT_TOKEN or CHAT_ID is not set; /relay will answer 500 until both are configured")
	}

	svc, closer, err := relay.FromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to assemble relay: %v", err)
	}

	srv := httpserver.New()
	handlers.New(svc, cfg).Routes(srv.Router)
	if closer != nil {
		srv.OnStop(closer)
	}

	log.Printf("relay %s (env=%s resolver=%s store=%s)", version, cfg.Server.Env, cfg.Topic.Resolver, cfg.Store.Backend)

	if err := srv.ListenAndServe(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
