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

// Package config loads relay configuration from environment variables.
package config

import (
	"os"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Bot    BotConfig
	Topic  TopicConfig
	Store  StoreConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type BotConfig struct {
	Token  string // bot credential; never logged
	ChatID string // destination chat identifier
	APIURL string
}

type TopicConfig struct {
	// Resolver picks how caller addresses map to threads: "remote"
	// (create-or-find against the chat API) or "hash" (derived locally).
	Resolver string
	// Overrides is the raw "ip:threadId,ip:threadId" table consulted before
	// hashing. Parsed by topic.ParseOverrides at startup.
	Overrides string
}

type StoreConfig struct {
	// Backend selects where resolved thread ids are cached: "memory"
	// (per-instance), "redis", "postgres", or "firestore".
	Backend                  string
	RedisAddr                string
	RedisPassword            string
	PostgresURL              string
	FirestoreProjectID       string
	FirestoreCredentialsPath string
	FirestoreCollection      string
}

// Load returns application configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Bot: BotConfig{
			Token:  getEnv("BOT_TOKEN", ""),
			ChatID: getEnv("CHAT_ID", ""),
			APIURL: getEnv("BOT_API_URL", "https://api.telegram.org"),
		},
		Topic: TopicConfig{
			Resolver:  getEnv("TOPIC_RESOLVER", "remote"),
			Overrides: getEnv("TOPIC_OVERRIDES", ""),
		},
		Store: StoreConfig{
			Backend:                  getEnv("THREAD_STORE", "memory"),
			RedisAddr:                getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:            getEnv("REDIS_PASSWORD", ""),
			PostgresURL:              getEnv("DB_URL", ""),
			FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			FirestoreCredentialsPath: getEnv("FIRESTORE_CREDENTIALS_PATH", ""),
			FirestoreCollection:      getEnv("FIRESTORE_COLLECTION", "ip-threads"),
		},
	}
}

// Configured reports whether the credentials needed for outbound sends are
// present. The server still starts without them so /ip and /health stay
// useful; /relay answers 500 until both are set.
func (c *Config) Configured() bool {
	return c.Bot.Token != "" && c.Bot.ChatID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
