package dataflows

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate"`
	Source      rssSource `xml:"source"`
	GUID        string    `xml:"guid"`
}

type rssSource struct {
	URL  string `xml:"url,attr"`
	Text string `xml:",chardata"`
}

// GoogleNewsClient searches Google News through its RSS feed.
type GoogleNewsClient struct {
	client *resty.Client
	cache  *CacheManager
	retry  RetryPolicy
}

func NewGoogleNewsClient(cfg *Config) *GoogleNewsClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "google_news")

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	return &GoogleNewsClient{
		client: client,
		cache:  NewCacheManager(cacheDir, 30*time.Minute, cfg.CacheEnabled),
		retry:  PolicyFromConfig(cfg),
	}
}

// SearchNews fetches articles matching query published in [start, end].
func (gnc *GoogleNewsClient) SearchNews(query string, start, end time.Time) ([]*NewsArticle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	cacheKey := fmt.Sprintf("%s_%s_%s", query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	var cached []*NewsArticle
	if gnc.cache.Get("google_news", "search", cacheKey, &cached) {
		return cached, nil
	}

	feedURL := buildRSSSearchURL(query, start, end)

	var articles []*NewsArticle
	err := WithRetry(gnc.retry, func() error {
		resp, err := gnc.client.R().Get(feedURL)
		if err != nil {
			return fmt.Errorf("fetch Google News feed: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("google news HTTP error %d", resp.StatusCode())
		}

		var feed rssFeed
		if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
			return fmt.Errorf("parse Google News feed: %w", err)
		}

		articles = articles[:0]
		for _, item := range feed.Channel.Items {
			articles = append(articles, convertRSSItem(item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	gnc.cache.Set("google_news", "search", cacheKey, articles)
	return articles, nil
}

// buildRSSSearchURL builds the feed URL with the date window folded into
// the query via after:/before: operators.
func buildRSSSearchURL(query string, start, end time.Time) string {
	q := query
	if !start.IsZero() && !end.IsZero() {
		q = fmt.Sprintf("%s after:%s before:%s", query,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	values := url.Values{}
	values.Set("q", q)
	values.Set("hl", "en-US")
	values.Set("gl", "US")
	values.Set("ceid", "US:en")

	return "https://news.google.com/rss/search?" + values.Encode()
}

func convertRSSItem(item rssItem) *NewsArticle {
	pubTime, err := time.Parse(time.RFC1123Z, item.PubDate)
	if err != nil {
		pubTime, _ = time.Parse(time.RFC1123, item.PubDate)
	}
	if pubTime.IsZero() {
		pubTime = time.Now()
	}

	source := item.Source.Text
	if source == "" && item.Source.URL != "" {
		if u, err := url.Parse(item.Source.URL); err == nil {
			source = u.Host
		}
	}
	if source == "" {
		source = "Google News"
	}

	return &NewsArticle{
		Title:       strings.TrimSpace(item.Title),
		Content:     cleanHTMLContent(item.Description),
		URL:         item.Link,
		Source:      source,
		PublishedAt: pubTime,
		Metadata: map[string]string{
			"guid":       item.GUID,
			"source_url": item.Source.URL,
		},
	}
}

// cleanHTMLContent extracts plain text from an HTML fragment. Feed
// descriptions arrive as anchor-wrapped snippets.
func cleanHTMLContent(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return stripHTMLTags(htmlContent)
	}

	text := strings.TrimSpace(doc.Text())
	if text == "" {
		return stripHTMLTags(htmlContent)
	}
	return text
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

func stripHTMLTags(content string) string {
	content = htmlTagPattern.ReplaceAllString(content, "")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	content = replacer.Replace(content)

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(content, " "))
}
