// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"strings"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// PubMed efetch XML structures (PubmedArticleSet).
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
	Data     pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID     string        `xml:"PMID"`
	Article  articleDetail `xml:"Article"`
	Mesh     []string      `xml:"MeshHeadingList>MeshHeading>DescriptorName"`
	Keywords []string      `xml:"KeywordList>Keyword"`
}

type articleDetail struct {
	Title    string         `xml:"ArticleTitle"`
	Abstract abstractDetail `xml:"Abstract"`
	Authors  []pubmedAuthor `xml:"AuthorList>Author"`
	Journal  journalDetail  `xml:"Journal"`
}

type abstractDetail struct {
	Sections []abstractSection `xml:"AbstractText"`
}

type abstractSection struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

type pubmedAuthor struct {
	LastName   string `xml:"LastName"`
	ForeName   string `xml:"ForeName"`
	Initials   string `xml:"Initials"`
	Collective string `xml:"CollectiveName"`
}

type journalDetail struct {
	Title string       `xml:"Title"`
	Issue journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	PubDate pubDate `xml:"PubDate"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

type pubmedData struct {
	IDs []articleID `xml:"ArticleIdList>ArticleId"`
}

type articleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}

// toRecord normalizes one PubmedArticle into an ArticleRecord.
func (a pubmedArticle) toRecord() types.ArticleRecord {
	art := a.Citation.Article
	return types.ArticleRecord{
		PMID:     strings.TrimSpace(a.Citation.PMID),
		Title:    strings.TrimSpace(art.Title),
		Abstract: art.Abstract.text(),
		Authors:  authorNames(art.Authors),
		Journal:  strings.TrimSpace(art.Journal.Title),
		PubDate:  art.Journal.Issue.PubDate.String(),
		DOI:      a.Data.doi(),
		Keywords: mergeKeywords(a.Citation.Mesh, a.Citation.Keywords),
	}
}

// text flattens the abstract sections, prefixing labeled sections with
// "LABEL: " (structured abstracts carry BACKGROUND/METHODS/... labels).
func (ab abstractDetail) text() string {
	var parts []string
	for _, s := range ab.Sections {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if label := strings.TrimSpace(s.Label); label != "" {
			parts = append(parts, label+": "+text)
		} else {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// authorNames formats each author as "Last Fore" (falling back to
// initials, bare last name, or collective name) and deduplicates while
// preserving source order.
func authorNames(authors []pubmedAuthor) []string {
	var names []string
	seen := make(map[string]bool)
	for _, a := range authors {
		name := a.name()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func (a pubmedAuthor) name() string {
	last := strings.TrimSpace(a.LastName)
	switch {
	case last != "" && strings.TrimSpace(a.ForeName) != "":
		return last + " " + strings.TrimSpace(a.ForeName)
	case last != "" && strings.TrimSpace(a.Initials) != "":
		return last + " " + strings.TrimSpace(a.Initials)
	case last != "":
		return last
	default:
		return strings.TrimSpace(a.Collective)
	}
}

// String renders the publication date as "Year Month Day" with trailing
// parts omitted when absent, falling back to the Medline date string.
func (d pubDate) String() string {
	if d.Year == "" {
		return strings.TrimSpace(d.MedlineDate)
	}
	s := d.Year
	if d.Month != "" {
		s += " " + d.Month
		if d.Day != "" {
			s += " " + d.Day
		}
	}
	return s
}

// doi returns the DOI from the article ID list, if present.
func (d pubmedData) doi() string {
	for _, id := range d.IDs {
		if strings.EqualFold(id.Type, "doi") {
			return strings.TrimSpace(id.Value)
		}
	}
	return ""
}

// mergeKeywords combines MeSH descriptors and author keywords,
// deduplicating while preserving order.
func mergeKeywords(mesh, keywords []string) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, kw := range append(append([]string{}, mesh...), keywords...) {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		merged = append(merged, kw)
	}
	return merged
}
