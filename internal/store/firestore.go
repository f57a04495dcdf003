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

package store

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore backs the thread cache with one document per client address,
// giving resolved ids durability across deploys and instances.
type Firestore struct {
	client     *firestore.Client
	collection string
}

type threadDoc struct {
	ThreadID int64 `firestore:"thread_id"`
}

// NewFirestore connects to the project's Firestore database. With an empty
// credentialsPath the client uses application default credentials, which is
// what a serverless runtime provides.
func NewFirestore(ctx context.Context, projectID, credentialsPath, collection string) (*Firestore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore store requires FIRESTORE_PROJECT_ID")
	}
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Firestore{client: client, collection: collection}, nil
}

func (f *Firestore) Get(ctx context.Context, key string) (int64, bool) {
	snap, err := f.client.Collection(f.collection).Doc(docID(key)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return 0, false
	}
	if err != nil {
		log.Printf("firestore get %s: %v", key, err)
		return 0, false
	}
	var doc threadDoc
	if err := snap.DataTo(&doc); err != nil {
		log.Printf("firestore decode %s: %v", key, err)
		return 0, false
	}
	return doc.ThreadID, true
}

func (f *Firestore) Set(ctx context.Context, key string, id int64) {
	if _, err := f.client.Collection(f.collection).Doc(docID(key)).Set(ctx, threadDoc{ThreadID: id}); err != nil {
		log.Printf("firestore set %s: %v", key, err)
	}
}

// Close releases the client's gRPC connections.
func (f *Firestore) Close() error {
	return f.client.Close()
}

// docID makes an address usable as a document id. Addresses come from
// attacker-controlled proxy headers and document ids cannot contain "/".
func docID(key string) string {
	return strings.ReplaceAll(key, "/", "_")
}
