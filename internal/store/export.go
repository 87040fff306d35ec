// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

var (
	dashRule  = strings.Repeat("-", 80)
	equalRule = strings.Repeat("=", 80)
)

// ExportText renders the articles of a result set as a plain-text
// report, one numbered block per article.
func ExportText(w io.Writer, set *types.ResultSet) error {
	for i, a := range set.Articles {
		_, err := fmt.Fprintf(w,
			"Article %d\n%s\nTitle: %s\nAuthors: %s\nJournal: %s\nPublication Date: %s\nAbstract:\n%s\nKeywords: %s\nPMID: %s\nDOI: %s\n%s\n\n",
			i+1, dashRule, a.Title, strings.Join(a.Authors, ", "), a.Journal,
			a.PubDate, a.Abstract, strings.Join(a.Keywords, ", "), a.PMID,
			a.DOI, equalRule,
		)
		if err != nil {
			return fmt.Errorf("writing article %d: %w", i+1, err)
		}
	}
	return nil
}
