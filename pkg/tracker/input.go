package tracker

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"
)

// Only URLs matching these patterns are admitted to a batch. The scheduled
// runner admits posts only; the web entry points also accept reels.
var (
	postOrReelURLPattern = regexp.MustCompile(`instagram\.com/(p|reel)/[A-Za-z0-9_-]+`)
	postURLPattern       = regexp.MustCompile(`instagram\.com/p/[A-Za-z0-9_-]+`)
)

// IsPostOrReelURL reports whether the URL points at an Instagram post or reel
func IsPostOrReelURL(url string) bool {
	return postOrReelURLPattern.MatchString(url)
}

// IsPostURL reports whether the URL points at an Instagram post
func IsPostURL(url string) bool {
	return postURLPattern.MatchString(url)
}

// ParseURLList extracts valid post/reel URLs from newline-delimited text,
// as submitted by the web form's textarea
func ParseURLList(text string) []string {
	var urls []string
	for _, line := range strings.Split(text, "\n") {
		url := strings.TrimSpace(line)
		if url == "" {
			continue
		}
		if IsPostOrReelURL(url) {
			urls = append(urls, url)
		}
	}
	return urls
}

// ParseCSVURLs extracts valid post/reel URLs from the first column of a CSV
// stream. A header row is dropped naturally because it never matches the
// URL pattern.
func ParseCSVURLs(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var urls []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}
		url := strings.TrimSpace(row[0])
		if url == "" {
			continue
		}
		if IsPostOrReelURL(url) {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

// FilterPostURLs keeps only post URLs from a raw column of cell values,
// skipping a leading "url" header cell. This is the admission rule of the
// scheduled runner reading its URL sheet.
func FilterPostURLs(cells []string) []string {
	var urls []string
	for i, cell := range cells {
		url := strings.TrimSpace(cell)
		if url == "" {
			continue
		}
		if i == 0 && strings.EqualFold(url, "url") {
			continue
		}
		if IsPostURL(url) {
			urls = append(urls, url)
		}
	}
	return urls
}
