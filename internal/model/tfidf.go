package model

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

const MaxFeatures = 100

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer is the fitted TF-IDF state. Terms are in column order
// (alphabetical) and IDF[i] belongs to Terms[i].
type Vectorizer struct {
	Vocabulary map[string]int
	Terms      []string
	IDF        []float64
}

// ProductFeatures holds one L2-normalized TF-IDF row per product.
type ProductFeatures struct {
	Vectorizer   *Vectorizer
	Rows         [][]float64
	ProductIDs   []string
	ProductIndex map[string]int
}

// ProductText is the blob a product contributes to the text model.
func ProductText(p domain.Product) string {
	return p.Name + " " + p.Description + " " + strings.Join(p.Tags, " ") + " " + p.Category
}

func tokenize(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := tokens[:0]
	for _, t := range tokens {
		if _, stop := englishStopWords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FitTFIDF fits a vectorizer over the product catalog and transforms every
// product. The vocabulary keeps the maxFeatures terms with the highest
// corpus frequency, ties broken alphabetically.
func FitTFIDF(products []domain.Product, maxFeatures int) (*ProductFeatures, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("fit tf-idf: %w", domain.ErrInsufficientData)
	}
	if maxFeatures <= 0 {
		maxFeatures = MaxFeatures
	}

	docs := make([][]string, len(products))
	corpusFreq := make(map[string]int)
	for i, p := range products {
		docs[i] = tokenize(ProductText(p))
		for _, t := range docs[i] {
			corpusFreq[t]++
		}
	}

	terms := make([]string, 0, len(corpusFreq))
	for t := range corpusFreq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
			return corpusFreq[terms[i]] > corpusFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		Terms:      terms,
		IDF:        make([]float64, len(terms)),
	}
	for i, t := range terms {
		v.Vocabulary[t] = i
	}

	docFreq := make([]int, len(terms))
	for _, doc := range docs {
		seen := make(map[int]bool)
		for _, t := range doc {
			if idx, ok := v.Vocabulary[t]; ok && !seen[idx] {
				seen[idx] = true
				docFreq[idx]++
			}
		}
	}
	n := float64(len(docs))
	for i, df := range docFreq {
		// smoothed idf: ln((1+n)/(1+df)) + 1
		v.IDF[i] = math.Log((1+n)/(1+float64(df))) + 1
	}

	features := &ProductFeatures{
		Vectorizer:   v,
		Rows:         make([][]float64, len(products)),
		ProductIDs:   make([]string, len(products)),
		ProductIndex: make(map[string]int, len(products)),
	}
	for i, p := range products {
		features.Rows[i] = v.transformTokens(docs[i])
		features.ProductIDs[i] = p.ID
		features.ProductIndex[p.ID] = i
	}
	return features, nil
}

func (v *Vectorizer) transformTokens(tokens []string) []float64 {
	row := make([]float64, len(v.Terms))
	for _, t := range tokens {
		if idx, ok := v.Vocabulary[t]; ok {
			row[idx]++
		}
	}
	floats.Mul(row, v.IDF)
	if norm := floats.Norm(row, 2); norm > 0 {
		floats.Scale(1/norm, row)
	}
	return row
}
