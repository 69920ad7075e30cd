package client

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbnc/pkg/debounce"
)

func policyBody(t *testing.T, rules []debounce.RuleSpec, interval int) []byte {
	t.Helper()
	body, err := json.Marshal(ControllerResponse{
		Policy: DebouncePolicy{
			Spec: DebouncePolicySpec{Rules: rules, Interval: interval},
		},
	})
	require.NoError(t, err)
	return body
}

func receiveRules(t *testing.T, ch chan []debounce.RuleSpec) []debounce.RuleSpec {
	t.Helper()
	select {
	case rules := <-ch:
		return rules
	case <-time.After(time.Second):
		t.Fatal("no rule update received")
		return nil
	}
}

func TestFetchPolicy(t *testing.T) {
	rules := []debounce.RuleSpec{{
		Include: []string{"https://tracker.example/*"},
		Action:  "redirect",
		Param:   "url",
	}}

	var gotIfNoneMatch string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/policy", r.URL.Path)
		gotIfNoneMatch = r.Header.Get("If-None-Match")
		if gotIfNoneMatch == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write(policyBody(t, rules, 0))
	}))
	defer srv.Close()

	interval := 30 * time.Second
	ch := make(chan []debounce.RuleSpec, 1)
	f := NewFetcher(srv.URL, &interval, false, ch, "", nil)

	f.fetchPolicy()
	got := receiveRules(t, ch)
	require.Len(t, got, 1)
	assert.Equal(t, "url", got[0].Param)
	assert.Empty(t, gotIfNoneMatch)

	// Second fetch revalidates with the stored ETag and pushes nothing.
	f.fetchPolicy()
	assert.Equal(t, `"v1"`, gotIfNoneMatch)
	select {
	case <-ch:
		t.Fatal("unexpected rule update after 304")
	default:
	}
}

func TestFetchPolicyIntervalFromController(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(policyBody(t, nil, 120))
	}))
	defer srv.Close()

	interval := 30 * time.Second
	ch := make(chan []debounce.RuleSpec, 1)
	f := NewFetcher(srv.URL, &interval, false, ch, "", nil)

	f.fetchPolicy()
	assert.Equal(t, 120*time.Second, interval)
}

func TestFetchPolicyKeepsStaleOnErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"decode error", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(c.handler)
			defer srv.Close()

			interval := 30 * time.Second
			ch := make(chan []debounce.RuleSpec, 1)
			f := NewFetcher(srv.URL, &interval, false, ch, "", nil)

			f.fetchPolicy()
			select {
			case <-ch:
				t.Fatal("unexpected rule update on failure")
			default:
			}
		})
	}
}

func TestFetchPolicyWritesCache(t *testing.T) {
	rules := []debounce.RuleSpec{{Include: []string{"*"}, Action: "redirect", Param: "u"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(policyBody(t, rules, 0))
	}))
	defer srv.Close()

	cachePath := filepath.Join(t.TempDir(), "policy.json")
	interval := 30 * time.Second
	ch := make(chan []debounce.RuleSpec, 1)
	f := NewFetcher(srv.URL, &interval, false, ch, cachePath, nil)

	f.fetchPolicy()
	receiveRules(t, ch)

	cached, err := LoadCachedRules(cachePath)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "u", cached[0].Param)
}

func TestLoadCachedRulesMissing(t *testing.T) {
	_, err := LoadCachedRules(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadCachedRulesCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := LoadCachedRules(path)
	assert.Error(t, err)
}
