package util

import (
	"net/http"
	"testing"
)

func request(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func TestProxyFunc_PerSchemeSelection(t *testing.T) {
	proxy := proxyFunc("http://proxy.corp:3128", "http://secure-proxy.corp:3128", "")

	u, err := proxy(request(t, "https://dbpedia.org/sparql"))
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u == nil || u.Host != "secure-proxy.corp:3128" {
		t.Errorf("https proxy = %v, want secure-proxy.corp:3128", u)
	}

	u, err = proxy(request(t, "http://dbpedia.org/sparql"))
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u == nil || u.Host != "proxy.corp:3128" {
		t.Errorf("http proxy = %v, want proxy.corp:3128", u)
	}
}

func TestProxyFunc_NoProxyHostsBypass(t *testing.T) {
	proxy := proxyFunc("http://proxy.corp:3128", "", "wikidata.org, internal.local")

	for _, raw := range []string{
		"https://wikidata.org/sparql",
		"https://query.wikidata.org/sparql",
	} {
		u, err := proxy(request(t, raw))
		if err != nil {
			t.Fatalf("proxy(%s): %v", raw, err)
		}
		if u != nil {
			t.Errorf("proxy(%s) = %v, want direct connection", raw, u)
		}
	}

	u, err := proxy(request(t, "https://dbpedia.org/sparql"))
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u == nil {
		t.Error("non-listed host must go through the proxy")
	}
}
