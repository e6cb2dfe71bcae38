// Package pokeapi reads the product catalog from a PokeAPI-compatible service.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

const pageSize = 100

type Client struct {
	baseURL     string
	httpClient  *http.Client
	concurrency int
}

func NewClient(baseURL string, concurrency int) *Client {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		concurrency: concurrency,
	}
}

type listPage struct {
	Next    *string `json:"next"`
	Results []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"results"`
}

type pokemonDetail struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

// FetchItems returns the first limit entries of the listing in listing order.
// Details are fetched concurrently; any failure aborts the whole fetch.
func (c *Client) FetchItems(ctx context.Context, limit int) ([]domain.CatalogItem, error) {
	if limit <= 0 {
		return []domain.CatalogItem{}, nil
	}

	var urls []string
	for offset := 0; len(urls) < limit; {
		n := min(pageSize, limit-len(urls))
		page, err := c.listPage(ctx, n, offset)
		if err != nil {
			return nil, err
		}
		for _, r := range page.Results {
			urls = append(urls, r.URL)
		}
		if len(page.Results) < n || page.Next == nil {
			break
		}
		offset += len(page.Results)
	}
	if len(urls) > limit {
		urls = urls[:limit]
	}

	items := make([]domain.CatalogItem, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			var d pokemonDetail
			if err := c.getJSON(gctx, u, &d); err != nil {
				return err
			}
			items[i] = domain.CatalogItem{SourceID: d.ID, Name: d.Name, ImageURL: d.Sprites.FrontDefault}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) listPage(ctx context.Context, limit, offset int) (*listPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var page listPage
	if err := c.getJSON(ctx, c.baseURL+"/pokemon?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog source %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog source %s: unexpected status %d", u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog source %s: decode: %w", u, err)
	}
	return nil
}
