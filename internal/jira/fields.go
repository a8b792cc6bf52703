package jira

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const defaultFieldLimit = 10

// Fields returns the field catalog of the Jira instance. Results are cached
// on the client; pass refresh to force a refetch.
func (c *Client) Fields(ctx context.Context, refresh bool, pat string) ([]Field, error) {
	if !refresh {
		c.fieldMu.RLock()
		cached := c.fieldCache
		c.fieldMu.RUnlock()
		if cached != nil {
			return append([]Field(nil), cached...), nil
		}
	}

	var fields []Field
	if err := c.call(ctx, pat, http.MethodGet, c.api("field"), nil, &fields); err != nil {
		return nil, err
	}

	c.fieldMu.Lock()
	c.fieldCache = append([]Field(nil), fields...)
	c.fieldMu.Unlock()
	return fields, nil
}

// SearchFields fuzzily matches the field catalog against a keyword. An
// empty keyword returns the first fields of the catalog.
func (c *Client) SearchFields(ctx context.Context, keyword string, limit int, refresh bool, pat string) ([]Field, error) {
	fields, err := c.Fields(ctx, refresh, pat)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultFieldLimit
	}

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		if len(fields) > limit {
			fields = fields[:limit]
		}
		return fields, nil
	}

	// Rank over name and id together so "sprint" finds both the Sprint
	// field and customfield ids containing the word.
	targets := make([]string, len(fields))
	for i, f := range fields {
		targets[i] = f.Name + " " + f.ID
	}
	ranks := fuzzy.RankFindNormalizedFold(keyword, targets)
	sort.Sort(ranks)

	matched := make([]Field, 0, limit)
	for _, r := range ranks {
		matched = append(matched, fields[r.OriginalIndex])
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}
