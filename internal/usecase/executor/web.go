package executor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"desktop-agent/internal/domain/entity"
)

const searchURL = "https://www.google.com/search?q="

func (a *Actions) webHandlers() []*handler {
	return []*handler{
		newHandler(entity.KindWeb, entity.ActionSearch, "Search the web for a query.", []string{"query"}, a.search),
		newHandler(entity.KindWeb, entity.ActionNavigate, "Open a URL; https:// is added when no scheme is given.", []string{"url"}, a.navigate),
	}
}

// SearchURL builds the search page address, spaces becoming '+'.
func SearchURL(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	return searchURL + strings.Join(words, "+")
}

// NavigateURL adds https:// to addresses without a scheme.
func NavigateURL(address string) string {
	address = strings.TrimSpace(address)
	if strings.HasPrefix(address, "http://") || strings.HasPrefix(address, "https://") {
		return address
	}
	return "https://" + address
}

func (a *Actions) search(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	if a.ports.Web == nil {
		return failure("Search failed: web backend not configured", errNoBackend)
	}
	query := cmd.Params.Text("query")
	target := SearchURL(query)
	if err := a.ports.Web.OpenURL(ctx, target); err != nil {
		return failure("Search failed", err)
	}
	return entity.Succeeded("Searched for: "+query, map[string]any{"url": target})
}

func (a *Actions) navigate(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	if a.ports.Web == nil {
		return failure("Navigation failed: web backend not configured", errNoBackend)
	}
	address := cmd.Params.Text("url")
	if address == "" {
		address = cmd.Params.Text("query")
	}
	target := NavigateURL(address)
	if err := a.ports.Web.OpenURL(ctx, target); err != nil {
		return failure(fmt.Sprintf("Navigation to %s failed", target), err)
	}
	return entity.Succeeded("Navigated to: "+target, map[string]any{"url": target})
}
