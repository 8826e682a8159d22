// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

const medlineXML = `<?xml version="1.0" encoding="UTF-8"?>
<nlmSearchResult>
<term>cholesterol</term>
<count>1</count>
<list num="1" start="0" per="1">
<document rank="0" url="https://medlineplus.gov/cholesterol.html">
<content name="title">&lt;span class="qt0"&gt;Cholesterol&lt;/span&gt;</content>
<content name="snippet">&lt;span class="qt0"&gt;Cholesterol&lt;/span&gt; is a waxy, fat-like substance &amp;amp; more.</content>
</document>
</list>
</nlmSearchResult>`

const emptyMedlineXML = `<?xml version="1.0" encoding="UTF-8"?>
<nlmSearchResult><term>zzz</term><count>0</count><list num="0" start="0" per="0"></list></nlmSearchResult>`

const efetchXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
<PubmedArticle>
<MedlineCitation Status="MEDLINE">
<PMID Version="1">12345</PMID>
<Article>
<ArticleTitle>Statin therapy in <i>adults</i>.</ArticleTitle>
<Abstract>
<AbstractText Label="BACKGROUND">Statins lower LDL.</AbstractText>
<AbstractText Label="RESULTS">Outcomes improved.</AbstractText>
</Abstract>
</Article>
</MedlineCitation>
</PubmedArticle>
</PubmedArticleSet>`

func newNLMServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}

		q := r.URL.Query()

		switch r.URL.Path {
		case "/ws/query":
			if q.Get("db") != "healthTopics" || q.Get("retmax") != "1" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if q.Get("term") == "zzz" {
				_, _ = w.Write([]byte(emptyMedlineXML))
				return
			}
			_, _ = w.Write([]byte(medlineXML))
		case "/eutils/esearch.fcgi":
			if q.Get("retmode") != "json" || q.Get("sort") != "relevance" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if q.Get("term") == "nothing" {
				_, _ = w.Write([]byte(`{"esearchresult":{"idlist":[]}}`))
				return
			}
			_, _ = w.Write([]byte(`{"esearchresult":{"idlist":["12345"]}}`))
		case "/eutils/efetch.fcgi":
			if q.Get("id") != "12345" || q.Get("retmode") != "xml" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(efetchXML))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func newTestResearcher(server *httptest.Server, cache Cache) *Researcher {
	return NewResearcher(ResearcherConfig{
		MedlineURL: server.URL + "/ws/query",
		PubMedURL:  server.URL + "/eutils/",
		Cache:      cache,
	})
}

func TestDefinition(t *testing.T) {
	t.Parallel()

	r := newTestResearcher(newNLMServer(t, nil), nil)

	def, err := r.Definition(context.Background(), "cholesterol")
	require.NoError(t, err)
	require.Equal(t, "Cholesterol", def.Title)
	require.Equal(t, "Cholesterol is a waxy, fat-like substance & more.", def.Definition)
	require.Equal(t, "https://medlineplus.gov/cholesterol.html", def.URL)

	missing, err := r.Definition(context.Background(), "zzz")
	require.NoError(t, err)
	require.Equal(t, Definition{Title: "zzz", Definition: "No official definition found."}, missing)
}

func TestEvidence(t *testing.T) {
	t.Parallel()

	r := newTestResearcher(newNLMServer(t, nil), nil)

	articles, err := r.Evidence(context.Background(), "statin guidelines")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, "Statin therapy in adults.", articles[0].Title)
	require.Equal(t, "Statins lower LDL. Outcomes improved....", articles[0].Summary)
	require.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/12345/", articles[0].URL)

	none, err := r.Evidence(context.Background(), "nothing")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestEvidenceServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	r := newTestResearcher(server, nil)

	_, err := r.Evidence(context.Background(), "x")
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	_, err = r.Definition(context.Background(), "x")
	require.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestRedisCache(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var hits int32
	r := newTestResearcher(newNLMServer(t, &hits), NewRedisCache(client))

	ctx := context.Background()

	first, err := r.Definition(ctx, "Cholesterol")
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))

	second, err := r.Definition(ctx, "cholesterol")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, atomic.LoadInt32(&hits), "second lookup should be served from cache")

	key := cacheKeyPrefix + "medline:cholesterol"
	require.True(t, mr.Exists(key))
	require.Equal(t, CacheTTL, mr.TTL(key))

	_, err = NewRedisCache(client).Get(ctx, "missing")
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestNewRedisCacheFromURL(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	cache, err := NewRedisCacheFromURL(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	require.NoError(t, cache.Set(context.Background(), "k", "v", CacheTTL))

	got, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "v", got)

	_, err = NewRedisCacheFromURL(context.Background(), "not a url")
	require.Error(t, err)
}

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	require.Equal(t, "plain", StripMarkup("  plain "))
	require.Equal(t, "High LDL & HDL", StripMarkup(`<span class="qt1">High</span> LDL &amp; HDL`))
	require.False(t, strings.Contains(StripMarkup("<b>x</b>"), "<"))
}
