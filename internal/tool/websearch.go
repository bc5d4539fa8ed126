package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const maxWebResults = 5

// duckDuckGoResponse 是 DuckDuckGo Instant Answer API 的响应子集。
type duckDuckGoResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Answer        string `json:"Answer"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// webSearch 调用 DuckDuckGo 检索网络信息，最多返回 5 条结果文本。
func (r *Registry) webSearch(ctx context.Context, query string) string {
	if strings.TrimSpace(query) == "" {
		return "Search error: empty query."
	}

	endpoint := fmt.Sprintf("https://api.duckduckgo.com/?q=%s&format=json&no_html=1&skip_disambig=1",
		url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Sprintf("Search error: %v. Please try a different query.", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Search error: %v. Please try a different query.", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Search error: search service returned status %d.", resp.StatusCode)
	}

	var ddg duckDuckGoResponse
	if err := json.NewDecoder(resp.Body).Decode(&ddg); err != nil {
		return fmt.Sprintf("Search error: %v. Please try a different query.", err)
	}

	var results []string
	if ddg.Answer != "" {
		results = append(results, ddg.Answer)
	}
	if ddg.AbstractText != "" {
		entry := ddg.AbstractText
		if ddg.AbstractURL != "" {
			entry += " (" + ddg.AbstractURL + ")"
		}
		results = append(results, entry)
	}
	for _, topic := range ddg.RelatedTopics {
		if len(results) >= maxWebResults {
			break
		}
		if topic.Text == "" {
			continue
		}
		entry := topic.Text
		if topic.FirstURL != "" {
			entry += " (" + topic.FirstURL + ")"
		}
		results = append(results, entry)
	}

	if len(results) == 0 {
		return fmt.Sprintf("No search results found for '%s'. Try rephrasing your search query.", query)
	}
	if len(results) > maxWebResults {
		results = results[:maxWebResults]
	}
	return strings.Join(results, "\n")
}
