package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// --- fake E-utilities server ---

type fakeEutils struct {
	esearchJSON string
	efetchXML   string

	mu        sync.Mutex
	esearches []url.Values
	efetches  []url.Values
}

func (f *fakeEutils) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "esearch.fcgi"):
			f.esearches = append(f.esearches, r.URL.Query())
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, f.esearchJSON)
		case strings.HasSuffix(r.URL.Path, "efetch.fcgi"):
			f.efetches = append(f.efetches, r.URL.Query())
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, f.efetchXML)
		default:
			http.NotFound(w, r)
		}
	})
}

// useServer points both E-utilities endpoints at the test server and
// restores them when the test ends.
func useServer(t *testing.T, ts *httptest.Server) {
	t.Helper()
	oldSearch, oldFetch := esearchBase, efetchBase
	esearchBase = ts.URL + "/esearch.fcgi"
	efetchBase = ts.URL + "/efetch.fcgi"
	t.Cleanup(func() {
		esearchBase, efetchBase = oldSearch, oldFetch
		ts.Close()
	})
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		BatchSize:  100,
		MaxRetries: 1,
	}
}

func esearchCount(count int) string {
	return fmt.Sprintf(`{"esearchresult": {"count": "%d", "querykey": "1", "webenv": "MCID_TEST", "idlist": []}}`, count)
}

const sampleEsearchJSON = `{
  "header": {"type": "esearch", "version": "0.3"},
  "esearchresult": {
    "count": "2",
    "retmax": "2",
    "retstart": "0",
    "querykey": "1",
    "webenv": "MCID_68a9f0c0b1",
    "idlist": ["31452104", "29320736"]
  }
}`

const sampleEfetchXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
<PubmedArticle>
  <MedlineCitation Status="MEDLINE">
    <PMID Version="1">31452104</PMID>
    <Article PubModel="Print">
      <Journal>
        <Title>Nature reviews. Clinical oncology</Title>
        <JournalIssue CitedMedium="Internet">
          <PubDate><Year>2019</Year><Month>Aug</Month><Day>26</Day></PubDate>
        </JournalIssue>
      </Journal>
      <ArticleTitle>CAR T cell therapy for solid tumours.</ArticleTitle>
      <Abstract>
        <AbstractText Label="BACKGROUND">Chimeric antigen receptor T cells have transformed haematological cancer care.</AbstractText>
        <AbstractText Label="CONCLUSIONS">Solid tumours remain a challenge.</AbstractText>
      </Abstract>
      <AuthorList CompleteYN="Y">
        <Author ValidYN="Y"><LastName>Hou</LastName><ForeName>Andrew J</ForeName><Initials>AJ</Initials></Author>
        <Author ValidYN="Y"><LastName>Chen</LastName><Initials>LC</Initials></Author>
        <Author ValidYN="Y"><CollectiveName>CAR-T Consortium</CollectiveName></Author>
      </AuthorList>
    </Article>
    <MeshHeadingList>
      <MeshHeading><DescriptorName UI="D017430" MajorTopicYN="Y">Immunotherapy, Adoptive</DescriptorName></MeshHeading>
      <MeshHeading><DescriptorName UI="D009369" MajorTopicYN="N">Neoplasms</DescriptorName></MeshHeading>
    </MeshHeadingList>
    <KeywordList Owner="NOTNLM">
      <Keyword MajorTopicYN="N">CAR T</Keyword>
      <Keyword MajorTopicYN="N">Neoplasms</Keyword>
    </KeywordList>
  </MedlineCitation>
  <PubmedData>
    <ArticleIdList>
      <ArticleId IdType="pubmed">31452104</ArticleId>
      <ArticleId IdType="doi">10.1038/s41571-019-0184-6</ArticleId>
    </ArticleIdList>
  </PubmedData>
</PubmedArticle>
<PubmedArticle>
  <MedlineCitation Status="MEDLINE">
    <PMID Version="1">29320736</PMID>
    <Article PubModel="Print">
      <Journal>
        <Title>The Lancet. Oncology</Title>
        <JournalIssue CitedMedium="Print">
          <PubDate><MedlineDate>2018 Jan-Feb</MedlineDate></PubDate>
        </JournalIssue>
      </Journal>
      <ArticleTitle>Checkpoint inhibition in metastatic melanoma.</ArticleTitle>
      <AuthorList CompleteYN="Y">
        <Author ValidYN="Y"><LastName>Ribas</LastName><ForeName>Antoni</ForeName><Initials>A</Initials></Author>
      </AuthorList>
    </Article>
  </MedlineCitation>
  <PubmedData>
    <ArticleIdList>
      <ArticleId IdType="pubmed">29320736</ArticleId>
    </ArticleIdList>
  </PubmedData>
</PubmedArticle>
</PubmedArticleSet>`

const minimalEfetchXML = `<?xml version="1.0" ?>
<PubmedArticleSet>
<PubmedArticle>
  <MedlineCitation>
    <PMID>10000001</PMID>
    <Article>
      <ArticleTitle>Stub</ArticleTitle>
      <Journal><Title>J</Title></Journal>
    </Article>
  </MedlineCitation>
</PubmedArticle>
</PubmedArticleSet>`

// --- Search ---

func TestClientSearch(t *testing.T) {
	f := &fakeEutils{esearchJSON: sampleEsearchJSON, efetchXML: sampleEfetchXML}
	useServer(t, httptest.NewServer(f.handler()))

	c := NewClient(testCfg())
	records, err := c.Search(context.Background(), Query{
		Term:     "cancer immunotherapy",
		FromDate: "2018/01/01",
		ToDate:   "2020/01/01",
		Limit:    8,
		Email:    "reader@example.org",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	r := records[0]
	if r.PMID != "31452104" {
		t.Errorf("PMID = %q, want %q", r.PMID, "31452104")
	}
	if r.Title != "CAR T cell therapy for solid tumours." {
		t.Errorf("Title = %q", r.Title)
	}
	wantAbstract := "BACKGROUND: Chimeric antigen receptor T cells have transformed haematological cancer care. CONCLUSIONS: Solid tumours remain a challenge."
	if r.Abstract != wantAbstract {
		t.Errorf("Abstract = %q, want %q", r.Abstract, wantAbstract)
	}
	wantAuthors := []string{"Hou Andrew J", "Chen LC", "CAR-T Consortium"}
	if !reflect.DeepEqual(r.Authors, wantAuthors) {
		t.Errorf("Authors = %v, want %v", r.Authors, wantAuthors)
	}
	if r.Journal != "Nature reviews. Clinical oncology" {
		t.Errorf("Journal = %q", r.Journal)
	}
	if r.PubDate != "2019 Aug 26" {
		t.Errorf("PubDate = %q, want %q", r.PubDate, "2019 Aug 26")
	}
	if r.DOI != "10.1038/s41571-019-0184-6" {
		t.Errorf("DOI = %q", r.DOI)
	}
	// MeSH descriptors come first; "Neoplasms" appears once despite
	// also being an author keyword.
	wantKeywords := []string{"Immunotherapy, Adoptive", "Neoplasms", "CAR T"}
	if !reflect.DeepEqual(r.Keywords, wantKeywords) {
		t.Errorf("Keywords = %v, want %v", r.Keywords, wantKeywords)
	}

	r1 := records[1]
	if r1.PubDate != "2018 Jan-Feb" {
		t.Errorf("PubDate = %q, want Medline date fallback", r1.PubDate)
	}
	if r1.DOI != "" {
		t.Errorf("DOI = %q, want empty", r1.DOI)
	}
	if r1.Abstract != "" {
		t.Errorf("Abstract = %q, want empty", r1.Abstract)
	}

	// One esearch, one efetch page.
	if len(f.esearches) != 1 || len(f.efetches) != 1 {
		t.Fatalf("calls = %d esearch, %d efetch, want 1 and 1", len(f.esearches), len(f.efetches))
	}
	es := f.esearches[0]
	if es.Get("db") != "pubmed" || es.Get("usehistory") != "y" || es.Get("retmode") != "json" {
		t.Errorf("esearch params = %v", es)
	}
	if !strings.Contains(es.Get("term"), `"2018/01/01"[Date - Publication]`) {
		t.Errorf("term = %q, missing date filter", es.Get("term"))
	}
	ef := f.efetches[0]
	if ef.Get("WebEnv") != "MCID_68a9f0c0b1" || ef.Get("query_key") != "1" {
		t.Errorf("efetch history params = %v", ef)
	}
	if ef.Get("retstart") != "0" || ef.Get("retmax") != "2" {
		t.Errorf("efetch paging params = %v", ef)
	}
	if ef.Get("retmode") != "xml" {
		t.Errorf("efetch retmode = %q, want xml", ef.Get("retmode"))
	}
}

func TestClientSearchNoResults(t *testing.T) {
	f := &fakeEutils{esearchJSON: esearchCount(0)}
	useServer(t, httptest.NewServer(f.handler()))

	c := NewClient(testCfg())
	records, err := c.Search(context.Background(), Query{Term: "zxqv9 nonsense", Limit: 8})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
	if len(f.efetches) != 0 {
		t.Errorf("efetch calls = %d, want 0", len(f.efetches))
	}
}

func TestClientSearchPagination(t *testing.T) {
	f := &fakeEutils{esearchJSON: esearchCount(5), efetchXML: minimalEfetchXML}
	useServer(t, httptest.NewServer(f.handler()))

	cfg := testCfg()
	cfg.BatchSize = 2
	cfg.BatchDelay = 5 * time.Millisecond

	c := NewClient(cfg)
	start := time.Now()
	records, err := c.Search(context.Background(), Query{Term: "test", Limit: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(records) = %d, want 3 (one per page)", len(records))
	}
	if len(f.efetches) != 3 {
		t.Fatalf("efetch calls = %d, want 3", len(f.efetches))
	}

	var pages []string
	for _, ef := range f.efetches {
		pages = append(pages, ef.Get("retstart")+"/"+ef.Get("retmax"))
	}
	want := []string{"0/2", "2/2", "4/1"}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("pages = %v, want %v", pages, want)
	}

	// Pages after the first wait out the politeness delay.
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("elapsed = %v, want at least two 5ms delays", elapsed)
	}
}

func TestClientSearchLimitCapsFetch(t *testing.T) {
	f := &fakeEutils{esearchJSON: esearchCount(500), efetchXML: minimalEfetchXML}
	useServer(t, httptest.NewServer(f.handler()))

	c := NewClient(testCfg())
	_, err := c.Search(context.Background(), Query{Term: "test", Limit: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(f.efetches) != 1 {
		t.Fatalf("efetch calls = %d, want 1", len(f.efetches))
	}
	if got := f.efetches[0].Get("retmax"); got != "3" {
		t.Errorf("retmax = %q, want 3", got)
	}
}

func TestClientSearchIdentityParams(t *testing.T) {
	f := &fakeEutils{esearchJSON: sampleEsearchJSON, efetchXML: minimalEfetchXML}
	useServer(t, httptest.NewServer(f.handler()))

	c := NewClient(testCfg())
	_, err := c.Search(context.Background(), Query{
		Term:    "test",
		OrderBy: "pub_date",
		Email:   "reader@example.org",
		APIKey:  "abc123",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	for _, params := range append(f.esearches, f.efetches...) {
		if params.Get("tool") != "pubmed-insight" {
			t.Errorf("tool = %q", params.Get("tool"))
		}
		if params.Get("email") != "reader@example.org" {
			t.Errorf("email = %q", params.Get("email"))
		}
		if params.Get("api_key") != "abc123" {
			t.Errorf("api_key = %q", params.Get("api_key"))
		}
	}
	if got := f.esearches[0].Get("sort"); got != "pub_date" {
		t.Errorf("sort = %q, want pub_date", got)
	}
	// Limit was omitted, so esearch asks for the default page.
	if got := f.esearches[0].Get("retmax"); got != "8" {
		t.Errorf("retmax = %q, want 8", got)
	}
}

func TestClientSearchDropsUnknownSort(t *testing.T) {
	f := &fakeEutils{esearchJSON: esearchCount(0)}
	useServer(t, httptest.NewServer(f.handler()))

	c := NewClient(testCfg())
	if _, err := c.Search(context.Background(), Query{Term: "test", OrderBy: "cosmic_relevance"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, ok := f.esearches[0]["sort"]; ok {
		t.Errorf("sort param sent for unrecognized order %q", "cosmic_relevance")
	}
}

func TestClientSearchRejectedQuery(t *testing.T) {
	f := &fakeEutils{esearchJSON: `{"esearchresult": {"count": "0", "ERROR": "Invalid date range"}}`}
	useServer(t, httptest.NewServer(f.handler()))

	c := NewClient(testCfg())
	_, err := c.Search(context.Background(), Query{Term: "test"})
	if err == nil || !strings.Contains(err.Error(), "rejected") {
		t.Errorf("expected rejected-query error, got: %v", err)
	}
}

func TestClientSearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	useServer(t, ts)

	c := NewClient(testCfg())
	_, err := c.Search(context.Background(), Query{Term: "test"})
	if err == nil || !strings.Contains(err.Error(), "HTTP 400") {
		t.Errorf("expected HTTP 400 error, got: %v", err)
	}
}

// --- query building ---

func TestBuildTerm(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			"both dates",
			Query{Term: "crispr", FromDate: "2015/01/01", ToDate: "2020/12/31"},
			`crispr AND ("2015/01/01"[Date - Publication] : "2020/12/31"[Date - Publication])`,
		},
		{"no dates", Query{Term: "crispr"}, "crispr"},
		{"from only", Query{Term: "crispr", FromDate: "2015/01/01"}, "crispr"},
		{"to only", Query{Term: "crispr", ToDate: "2020/12/31"}, "crispr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildTerm(tt.query); got != tt.want {
				t.Errorf("buildTerm = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- record parsing ---

func TestAuthorNames(t *testing.T) {
	authors := []pubmedAuthor{
		{LastName: "Hou", ForeName: "Andrew J", Initials: "AJ"},
		{LastName: "Chen", Initials: "LC"},
		{LastName: "Smith"},
		{Collective: "CAR-T Consortium"},
		{LastName: "Hou", ForeName: "Andrew J"},
		{},
	}
	want := []string{"Hou Andrew J", "Chen LC", "Smith", "CAR-T Consortium"}
	if got := authorNames(authors); !reflect.DeepEqual(got, want) {
		t.Errorf("authorNames = %v, want %v", got, want)
	}
}

func TestPubDateString(t *testing.T) {
	tests := []struct {
		name string
		date pubDate
		want string
	}{
		{"full", pubDate{Year: "2019", Month: "Aug", Day: "26"}, "2019 Aug 26"},
		{"year month", pubDate{Year: "2019", Month: "Aug"}, "2019 Aug"},
		{"year only", pubDate{Year: "2019"}, "2019"},
		{"day without month", pubDate{Year: "2019", Day: "26"}, "2019"},
		{"medline fallback", pubDate{MedlineDate: "2018 Jan-Feb"}, "2018 Jan-Feb"},
		{"empty", pubDate{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.date.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeKeywords(t *testing.T) {
	got := mergeKeywords(
		[]string{"Neoplasms", "Immunotherapy", ""},
		[]string{"CAR T", "Neoplasms", "  "},
	)
	want := []string{"Neoplasms", "Immunotherapy", "CAR T"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mergeKeywords = %v, want %v", got, want)
	}
}

func TestAbstractText(t *testing.T) {
	tests := []struct {
		name     string
		abstract abstractDetail
		want     string
	}{
		{
			"labeled sections",
			abstractDetail{Sections: []abstractSection{
				{Label: "BACKGROUND", Text: "First."},
				{Label: "METHODS", Text: "Second."},
			}},
			"BACKGROUND: First. METHODS: Second.",
		},
		{
			"unlabeled",
			abstractDetail{Sections: []abstractSection{{Text: "Plain abstract."}}},
			"Plain abstract.",
		},
		{
			"blank sections skipped",
			abstractDetail{Sections: []abstractSection{
				{Label: "BACKGROUND", Text: "  "},
				{Text: "Kept."},
			}},
			"Kept.",
		},
		{"empty", abstractDetail{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.abstract.text(); got != tt.want {
				t.Errorf("text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordsWithoutPMIDSkipped(t *testing.T) {
	const noPMID = `<?xml version="1.0" ?>
<PubmedArticleSet>
<PubmedArticle>
  <MedlineCitation>
    <Article><ArticleTitle>Orphan record</ArticleTitle></Article>
  </MedlineCitation>
</PubmedArticle>
</PubmedArticleSet>`

	f := &fakeEutils{esearchJSON: esearchCount(1), efetchXML: noPMID}
	useServer(t, httptest.NewServer(f.handler()))

	c := NewClient(testCfg())
	records, err := c.Search(context.Background(), Query{Term: "test", Limit: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestParseSampleSet(t *testing.T) {
	var set pubmedArticleSet
	if err := xml.Unmarshal([]byte(sampleEfetchXML), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(set.Articles) != 2 {
		t.Fatalf("len(Articles) = %d, want 2", len(set.Articles))
	}
	if got := set.Articles[0].Data.doi(); got != "10.1038/s41571-019-0184-6" {
		t.Errorf("doi = %q", got)
	}
	if got := set.Articles[1].Data.doi(); got != "" {
		t.Errorf("doi = %q, want empty", got)
	}
}
