package topic

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jredh-dev/relay/internal/botapi"
	"github.com/jredh-dev/relay/internal/store"
)

// fakeDirectory serves a fixed topic list in pages and records call counts.
type fakeDirectory struct {
	topics      []botapi.Topic
	listErr     error
	createErr   error
	listCalls   int
	createCalls int
	pagesSeen   []int
	nextID      int64
	onCreate    func(f *fakeDirectory)
}

func (f *fakeDirectory) ListTopics(_ context.Context, page, size int) ([]botapi.Topic, error) {
	f.listCalls++
	f.pagesSeen = append(f.pagesSeen, page)
	if f.listErr != nil {
		return nil, f.listErr
	}
	start := (page - 1) * size
	if start >= len(f.topics) {
		return nil, nil
	}
	end := start + size
	if end > len(f.topics) {
		end = len(f.topics)
	}
	return f.topics[start:end], nil
}

func (f *fakeDirectory) CreateTopic(_ context.Context, name string) (*botapi.Topic, error) {
	f.createCalls++
	if f.onCreate != nil {
		f.onCreate(f)
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	t := botapi.Topic{ThreadID: 1000 + f.nextID, Name: name}
	f.topics = append(f.topics, t)
	return &t, nil
}

func dummyTopics(n int) []botapi.Topic {
	topics := make([]botapi.Topic, n)
	for i := range topics {
		topics[i] = botapi.Topic{ThreadID: int64(i + 1), Name: fmt.Sprintf("IP: 10.0.0.%d", i)}
	}
	return topics
}

func TestRemoteResolver_CacheHitSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	dir := &fakeDirectory{}
	st := store.NewMemory()
	st.Set(ctx, "1.2.3.4", 77)

	r := NewRemoteResolver(dir, st)
	if got := r.Resolve(ctx, "1.2.3.4"); got != 77 {
		t.Errorf("expected cached 77, got %d", got)
	}
	if dir.listCalls != 0 || dir.createCalls != 0 {
		t.Errorf("cache hit made remote calls: list=%d create=%d", dir.listCalls, dir.createCalls)
	}
}

func TestRemoteResolver_FindsExistingTopic(t *testing.T) {
	ctx := context.Background()
	dir := &fakeDirectory{topics: []botapi.Topic{
		{ThreadID: 11, Name: "IP: 9.9.9.9"},
		{ThreadID: 55, Name: "IP: 1.2.3.4"},
	}}
	st := store.NewMemory()
	r := NewRemoteResolver(dir, st)

	if got := r.Resolve(ctx, "1.2.3.4"); got != 55 {
		t.Errorf("expected found topic 55, got %d", got)
	}
	if dir.createCalls != 0 {
		t.Errorf("found topic should not be re-created, create called %d times", dir.createCalls)
	}

	// Second sighting resolves from the cache without another listing.
	lists := dir.listCalls
	if got := r.Resolve(ctx, "1.2.3.4"); got != 55 {
		t.Errorf("expected cached 55, got %d", got)
	}
	if dir.listCalls != lists {
		t.Errorf("second resolve listed again: %d -> %d calls", lists, dir.listCalls)
	}
}

func TestRemoteResolver_CreatesWhenMissing(t *testing.T) {
	ctx := context.Background()
	dir := &fakeDirectory{}
	st := store.NewMemory()
	r := NewRemoteResolver(dir, st)

	got := r.Resolve(ctx, "9.9.9.9")
	if got != 1001 {
		t.Errorf("expected created topic 1001, got %d", got)
	}
	if dir.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", dir.createCalls)
	}
	if dir.topics[len(dir.topics)-1].Name != "IP: 9.9.9.9" {
		t.Errorf("created topic named %q, want naming convention", dir.topics[len(dir.topics)-1].Name)
	}

	// Same address again: cached, no second create.
	if again := r.Resolve(ctx, "9.9.9.9"); again != got {
		t.Errorf("expected stable id %d, got %d", got, again)
	}
	if dir.createCalls != 1 {
		t.Errorf("expected no second create, got %d calls", dir.createCalls)
	}
}

func TestRemoteResolver_PagesThroughDirectory(t *testing.T) {
	ctx := context.Background()
	topics := dummyTopics(150)
	topics[120] = botapi.Topic{ThreadID: 888, Name: "IP: 1.2.3.4"}
	dir := &fakeDirectory{topics: topics}
	r := NewRemoteResolver(dir, store.NewMemory())

	if got := r.Resolve(ctx, "1.2.3.4"); got != 888 {
		t.Errorf("expected topic 888 from page 2, got %d", got)
	}
	if dir.listCalls != 2 {
		t.Errorf("expected 2 pages listed, got %d", dir.listCalls)
	}
	if len(dir.pagesSeen) != 2 || dir.pagesSeen[0] != 1 || dir.pagesSeen[1] != 2 {
		t.Errorf("expected pages [1 2], got %v", dir.pagesSeen)
	}
}

func TestRemoteResolver_StopsOnShortPage(t *testing.T) {
	ctx := context.Background()
	// Exactly one full page without the target: the resolver must fetch the
	// next (empty) page, then give up searching and create.
	dir := &fakeDirectory{topics: dummyTopics(100)}
	r := NewRemoteResolver(dir, store.NewMemory())

	if got := r.Resolve(ctx, "1.2.3.4"); got != 1001 {
		t.Errorf("expected created topic 1001, got %d", got)
	}
	if dir.listCalls != 2 {
		t.Errorf("expected listing to stop after the empty page, got %d calls", dir.listCalls)
	}
	if dir.createCalls != 1 {
		t.Errorf("expected 1 create call, got %d", dir.createCalls)
	}
}

func TestRemoteResolver_RefindsAfterCreateRace(t *testing.T) {
	ctx := context.Background()
	dir := &fakeDirectory{
		createErr: &botapi.APIError{Code: 400, Description: "Bad Request: topic already exists"},
		onCreate: func(f *fakeDirectory) {
			// Another instance created the topic between our find and create.
			f.topics = append(f.topics, botapi.Topic{ThreadID: 88, Name: "IP: 3.3.3.3"})
		},
	}
	st := store.NewMemory()
	r := NewRemoteResolver(dir, st)

	if got := r.Resolve(ctx, "3.3.3.3"); got != 88 {
		t.Errorf("expected refound topic 88, got %d", got)
	}
	if dir.listCalls != 2 {
		t.Errorf("expected find + refind, got %d list calls", dir.listCalls)
	}
	if id, ok := st.Get(ctx, "3.3.3.3"); !ok || id != 88 {
		t.Errorf("refound id not cached: (%d, %v)", id, ok)
	}
}

func TestRemoteResolver_DegradesToDefaultChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("transport error on create", func(t *testing.T) {
		dir := &fakeDirectory{createErr: errors.New("connection reset")}
		st := store.NewMemory()
		r := NewRemoteResolver(dir, st)

		if got := r.Resolve(ctx, "4.4.4.4"); got != 0 {
			t.Errorf("expected default channel 0, got %d", got)
		}
		// Only logical already-exists failures warrant a refind.
		if dir.listCalls != 1 {
			t.Errorf("expected no refind for transport error, got %d list calls", dir.listCalls)
		}
		if _, ok := st.Get(ctx, "4.4.4.4"); ok {
			t.Error("failed resolution must not be cached")
		}
	})

	t.Run("already exists but refind misses", func(t *testing.T) {
		dir := &fakeDirectory{
			createErr: &botapi.APIError{Code: 400, Description: "topic already exists"},
		}
		r := NewRemoteResolver(dir, store.NewMemory())

		if got := r.Resolve(ctx, "5.5.5.5"); got != 0 {
			t.Errorf("expected default channel 0, got %d", got)
		}
		if dir.listCalls != 2 {
			t.Errorf("expected find + refind, got %d list calls", dir.listCalls)
		}
	})
}

func TestRemoteResolver_ListErrorFallsBackToCreate(t *testing.T) {
	ctx := context.Background()
	dir := &fakeDirectory{listErr: errors.New("listing unavailable")}
	r := NewRemoteResolver(dir, store.NewMemory())

	if got := r.Resolve(ctx, "6.6.6.6"); got != 1001 {
		t.Errorf("expected created topic despite listing error, got %d", got)
	}
	if dir.listCalls != 1 {
		t.Errorf("expected paging to stop on first error, got %d calls", dir.listCalls)
	}
	if dir.createCalls != 1 {
		t.Errorf("expected create after failed find, got %d calls", dir.createCalls)
	}
}
