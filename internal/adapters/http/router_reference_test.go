package httpadapter

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/graphragio/gateway/internal/core/domain"
)

func TestReferenceRendersHTMLPage(t *testing.T) {
	refs := &fakeReferenceService{page: &domain.ReferencePage{
		Kind:  "entities",
		Title: "ACME",
		Fields: []domain.ReferenceField{
			{Label: "Type", Value: "ORGANIZATION"},
			{Label: "Description", Value: "a company"},
			{Label: "Frequency", Value: ""},
		},
	}}
	srv := newTestServer(&fakeChatService{}, refs, RouterOptions{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/references/demo/entities/12")
	if err != nil {
		t.Fatalf("get reference: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, "<h1>ACME</h1>") || !strings.Contains(page, "a company") {
		t.Fatalf("page = %s", page)
	}
	// empty fields are not rendered
	if strings.Contains(page, "Frequency") {
		t.Fatalf("empty field rendered: %s", page)
	}
}

func TestReferenceBadPaths(t *testing.T) {
	srv := newTestServer(&fakeChatService{}, &fakeReferenceService{}, RouterOptions{})
	defer srv.Close()

	for _, path := range []string{
		"/v1/references/demo/entities",
		"/v1/references/demo/entities/not-a-number",
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestReferenceNotFound(t *testing.T) {
	refs := &fakeReferenceService{err: domain.WrapError(domain.ErrNotFound, "resolve reference", fmt.Errorf("no entity 99"))}
	srv := newTestServer(&fakeChatService{}, refs, RouterOptions{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/references/demo/entities/99")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIndexPageListsModels(t *testing.T) {
	srv := newTestServer(&fakeChatService{}, nil, RouterOptions{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, "demo:local") || !strings.Contains(page, "/v1/chat/completions") {
		t.Fatalf("index page = %s", page)
	}
}
