/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package research

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// Default endpoints of the National Library of Medicine services.
const (
	DefaultMedlineURL = "https://wsearch.nlm.nih.gov/ws/query"
	DefaultPubMedURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultEmail      = "labwave@example.com"

	pubmedArticleURL = "https://pubmed.ncbi.nlm.nih.gov/%s/"
	abstractLimit    = 500
)

// Definition is a patient-facing description of a term.
type Definition struct {
	Source     string `json:"source,omitempty"`
	Title      string `json:"title"`
	Definition string `json:"definition"`
	URL        string `json:"url"`
}

// Article is a PubMed result.
type Article struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// ResearcherConfig configures a Researcher. Empty fields use the defaults.
type ResearcherConfig struct {
	MedlineURL string
	PubMedURL  string
	Email      string
	Cache      Cache
	Timeout    time.Duration
}

// Researcher looks terms up in MedlinePlus and PubMed.
type Researcher struct {
	http       *resty.Client
	medlineURL string
	pubmedURL  string
	email      string
	cache      Cache
}

// NewResearcher creates a Researcher.
func NewResearcher(cfg ResearcherConfig) *Researcher {
	if cfg.MedlineURL == "" {
		cfg.MedlineURL = DefaultMedlineURL
	}
	if cfg.PubMedURL == "" {
		cfg.PubMedURL = DefaultPubMedURL
	}
	if cfg.Email == "" {
		cfg.Email = DefaultEmail
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Researcher{
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetRetryCount(1).
			SetRetryWaitTime(500 * time.Millisecond),
		medlineURL: cfg.MedlineURL,
		pubmedURL:  strings.TrimSuffix(cfg.PubMedURL, "/"),
		email:      cfg.Email,
		cache:      cfg.Cache,
	}
}

type medlineContent struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

type medlineDocument struct {
	URL      string           `xml:"url,attr"`
	Contents []medlineContent `xml:"content"`
}

type medlineResult struct {
	Documents []medlineDocument `xml:"list>document"`
}

func (d medlineDocument) content(name string) string {
	for _, c := range d.Contents {
		if c.Name == name {
			return c.Text
		}
	}

	return ""
}

// Definition returns the first MedlinePlus health topic matching term.
func (r *Researcher) Definition(ctx context.Context, term string) (Definition, error) {
	return cached(ctx, r.cache, "medline:"+strings.ToLower(term), func() (Definition, error) {
		return r.fetchDefinition(ctx, term)
	})
}

func (r *Researcher) fetchDefinition(ctx context.Context, term string) (Definition, error) {
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"db":      "healthTopics",
			"term":    term,
			"retmax":  "1",
			"rettype": "brief",
		}).
		Get(r.medlineURL)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to query MedlinePlus: %w", err)
	}

	if resp.IsError() {
		return Definition{}, fmt.Errorf("%w: MedlinePlus %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	var result medlineResult
	if err := xml.Unmarshal(resp.Body(), &result); err != nil {
		return Definition{}, fmt.Errorf("failed to parse MedlinePlus response: %w", err)
	}

	if len(result.Documents) == 0 {
		return Definition{Title: term, Definition: "No official definition found."}, nil
	}

	doc := result.Documents[0]

	return Definition{
		Source:     "MedlinePlus (National Library of Medicine)",
		Title:      StripMarkup(doc.content("title")),
		Definition: StripMarkup(doc.content("snippet")),
		URL:        doc.URL,
	}, nil
}

type esearchResult struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type innerXML struct {
	Inner string `xml:",innerxml"`
}

type pubmedArticle struct {
	PMID     string     `xml:"MedlineCitation>PMID"`
	Title    innerXML   `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract []innerXML `xml:"MedlineCitation>Article>Abstract>AbstractText"`
}

type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

// Evidence returns up to three PubMed articles for query, most relevant first.
func (r *Researcher) Evidence(ctx context.Context, query string) ([]Article, error) {
	return cached(ctx, r.cache, "pubmed:"+strings.ToLower(query), func() ([]Article, error) {
		return r.fetchEvidence(ctx, query)
	})
}

func (r *Researcher) fetchEvidence(ctx context.Context, query string) ([]Article, error) {
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"db":      "pubmed",
			"term":    query,
			"retmax":  "3",
			"retmode": "json",
			"email":   r.email,
			"sort":    "relevance",
		}).
		Get(r.pubmedURL + "/esearch.fcgi")
	if err != nil {
		return nil, fmt.Errorf("failed to search PubMed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: PubMed search %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	var search esearchResult
	if err := json.Unmarshal(resp.Body(), &search); err != nil {
		return nil, fmt.Errorf("failed to parse PubMed search: %w", err)
	}

	if len(search.Result.IDList) == 0 {
		return []Article{}, nil
	}

	resp, err = r.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"db":      "pubmed",
			"id":      strings.Join(search.Result.IDList, ","),
			"retmode": "xml",
			"email":   r.email,
		}).
		Get(r.pubmedURL + "/efetch.fcgi")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PubMed articles: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: PubMed fetch %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(resp.Body(), &set); err != nil {
		return nil, fmt.Errorf("failed to parse PubMed articles: %w", err)
	}

	articles := make([]Article, 0, len(set.Articles))

	for _, a := range set.Articles {
		parts := make([]string, 0, len(a.Abstract))
		for _, text := range a.Abstract {
			if s := StripMarkup(text.Inner); s != "" {
				parts = append(parts, s)
			}
		}

		articles = append(articles, Article{
			Source:  "PubMed",
			Title:   StripMarkup(a.Title.Inner),
			Summary: truncate(strings.Join(parts, " "), abstractLimit) + "...",
			URL:     fmt.Sprintf(pubmedArticleURL, strings.TrimSpace(a.PMID)),
		})
	}

	return articles, nil
}

// StripMarkup returns the text content of an HTML fragment, dropping tags
// such as MedlinePlus search highlights and decoding entities.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	var sb strings.Builder

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
