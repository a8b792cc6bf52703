package jira

import (
	"context"
	"testing"
)

const fieldCatalog = `[
  {"id":"summary","name":"Summary"},
  {"id":"customfield_10020","name":"Sprint","custom":true,"schema":{"type":"array","custom":"com.pyxis.greenhopper.jira:gh-sprint"}},
  {"id":"duedate","name":"Due date"},
  {"id":"customfield_10014","name":"Epic Link","custom":true}
]`

func TestFieldsCaches(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{{status: 200, body: fieldCatalog}}

	ctx := context.Background()
	first, err := client.Fields(ctx, false, "")
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	if len(first) != 4 {
		t.Fatalf("Fields() returned %d fields", len(first))
	}

	// Second call must hit the cache; no response is queued.
	second, err := client.Fields(ctx, false, "")
	if err != nil {
		t.Fatalf("cached Fields() error = %v", err)
	}
	if len(second) != 4 {
		t.Fatalf("cached Fields() returned %d fields", len(second))
	}
	if len(fake.calls) != 1 {
		t.Fatalf("Fields() made %d calls, want 1", len(fake.calls))
	}
}

func TestFieldsRefreshBypassesCache(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: fieldCatalog},
		{status: 200, body: `[{"id":"summary","name":"Summary"}]`},
	}

	ctx := context.Background()
	if _, err := client.Fields(ctx, false, ""); err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	refreshed, err := client.Fields(ctx, true, "")
	if err != nil {
		t.Fatalf("Fields(refresh) error = %v", err)
	}
	if len(refreshed) != 1 {
		t.Fatalf("Fields(refresh) returned %d fields, want refetched catalog", len(refreshed))
	}
}

func TestSearchFieldsFuzzy(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{{status: 200, body: fieldCatalog}}

	fields, err := client.SearchFields(context.Background(), "sprint", 3, false, "")
	if err != nil {
		t.Fatalf("SearchFields() error = %v", err)
	}
	if len(fields) == 0 {
		t.Fatal("SearchFields() found nothing for sprint")
	}
	if fields[0].ID != "customfield_10020" {
		t.Fatalf("SearchFields() best match = %+v, want the Sprint field", fields[0])
	}
}

func TestSearchFieldsEmptyKeyword(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{{status: 200, body: fieldCatalog}}

	fields, err := client.SearchFields(context.Background(), "", 2, false, "")
	if err != nil {
		t.Fatalf("SearchFields() error = %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("SearchFields() returned %d fields, want first 2", len(fields))
	}
	if fields[0].ID != "summary" {
		t.Fatalf("SearchFields() first = %+v", fields[0])
	}
}
