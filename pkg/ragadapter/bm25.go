package ragadapter

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// bm25 tuning constants, standard values from the Okapi BM25 literature.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

type bm25Doc struct {
	id        string
	text      string
	metadata  map[string]string
	terms     map[string]int
	length    int
}

// bm25Index is an in-memory inverted index over indexed documents' text,
// scored with Okapi BM25 against a query.
type bm25Index struct {
	docs       map[string]*bm25Doc
	docFreq    map[string]int
	totalLen   int
}

func newBM25Index() *bm25Index {
	return &bm25Index{
		docs:    make(map[string]*bm25Doc),
		docFreq: make(map[string]int),
	}
}

func (idx *bm25Index) add(id, text string, metadata map[string]string) {
	if existing, ok := idx.docs[id]; ok {
		idx.remove(existing)
	}

	terms := make(map[string]int)
	for _, tok := range tokenize(text) {
		terms[tok]++
	}

	doc := &bm25Doc{id: id, text: text, metadata: metadata, terms: terms, length: len(tokenize(text))}
	idx.docs[id] = doc
	idx.totalLen += doc.length
	for tok := range terms {
		idx.docFreq[tok]++
	}
}

func (idx *bm25Index) remove(doc *bm25Doc) {
	delete(idx.docs, doc.id)
	idx.totalLen -= doc.length
	for tok := range doc.terms {
		idx.docFreq[tok]--
		if idx.docFreq[tok] <= 0 {
			delete(idx.docFreq, tok)
		}
	}
}

func (idx *bm25Index) avgDocLength() float64 {
	if len(idx.docs) == 0 {
		return 0
	}
	return float64(idx.totalLen) / float64(len(idx.docs))
}

// topK ranks every indexed document against query and returns the k
// highest-scoring, in descending score order. Documents that score zero
// (share no terms with the query) are excluded.
func (idx *bm25Index) topK(query string, k int) []Chunk {
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 || len(idx.docs) == 0 {
		return nil
	}

	n := float64(len(idx.docs))
	avgLen := idx.avgDocLength()

	scored := make([]Chunk, 0, len(idx.docs))
	for _, doc := range idx.docs {
		score := 0.0
		for _, qt := range queryTerms {
			tf := float64(doc.terms[qt])
			if tf == 0 {
				continue
			}
			df := float64(idx.docFreq[qt])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			denom := tf + bm25K1*(1-bm25B+bm25B*float64(doc.length)/avgLen)
			score += idf * (tf * (bm25K1 + 1) / denom)
		}
		if score <= 0 {
			continue
		}
		scored = append(scored, Chunk{ID: doc.id, Text: doc.text, Score: score, Metadata: doc.metadata})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// tokenize lowercases and splits on non-letter/non-digit runes. It performs
// no stopword filtering: short, generic queries will naturally score lower
// due to IDF rather than being pre-filtered.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
