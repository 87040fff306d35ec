package citation

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style
// Language) format. The field names follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Author         []CSLName `yaml:"author,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	PMID           string    `yaml:"PMID,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the records as a CSL-YAML list to w.
func FormatCSL(w io.Writer, records []types.ArticleRecord) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts an ArticleRecord to a CSLItem.
func toCSLItem(r types.ArticleRecord) CSLItem {
	item := CSLItem{
		ID:             cslID(r),
		Type:           "article-journal",
		Title:          r.Title,
		ContainerTitle: r.Journal,
		Abstract:       r.Abstract,
		DOI:            r.DOI,
		PMID:           r.PMID,
	}

	for _, a := range r.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if parts := dateParts(r.PubDate); len(parts) > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{parts}}
	}

	return item
}

func cslID(r types.ArticleRecord) string {
	if r.PMID != "" {
		return "pmid-" + r.PMID
	}
	if r.DOI != "" {
		return r.DOI
	}
	return "unidentified"
}

// parseAuthorName splits a family-first name string ("Hou Andrew J")
// into CSL family/given parts. Single-token names, typically collective
// authors, use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.Index(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Family: name[:idx],
		Given:  name[idx+1:],
	}
}

var monthNumbers = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// dateParts converts a "Year Month Day" publication date into CSL
// date-parts, keeping as many leading parts as parse cleanly.
func dateParts(pubDate string) []int {
	fields := strings.Fields(pubDate)
	if len(fields) == 0 {
		return nil
	}

	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	parts := []int{year}

	if len(fields) > 1 {
		month, ok := monthNumbers[fields[1]]
		if !ok {
			if n, err := strconv.Atoi(fields[1]); err == nil && n >= 1 && n <= 12 {
				month, ok = n, true
			}
		}
		if !ok {
			return parts
		}
		parts = append(parts, month)

		if len(fields) > 2 {
			if day, err := strconv.Atoi(fields[2]); err == nil {
				parts = append(parts, day)
			}
		}
	}

	return parts
}
