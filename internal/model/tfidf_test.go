package model

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Gaming Laptop", Description: "A fast laptop for the gamer", Category: "electronics", Tags: []string{"gaming", "laptop", "tech"}},
		{ID: "p2", Name: "Wireless Headphones", Description: "Headphones with great sound", Category: "electronics", Tags: []string{"audio", "wireless", "music"}},
		{ID: "p3", Name: "Yoga Mat", Description: "Soft mat for yoga", Category: "sports", Tags: []string{"yoga", "fitness"}},
	}
}

func TestFitTFIDF(t *testing.T) {
	features, err := FitTFIDF(sampleProducts(), MaxFeatures)
	if err != nil {
		t.Fatalf("FitTFIDF failed: %v", err)
	}

	if len(features.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(features.Rows))
	}
	if features.ProductIndex["p2"] != 1 || features.ProductIDs[1] != "p2" {
		t.Error("product index does not match row order")
	}

	for _, stop := range []string{"a", "for", "the", "with"} {
		if _, ok := features.Vectorizer.Vocabulary[stop]; ok {
			t.Errorf("stop word %q in vocabulary", stop)
		}
	}
	if _, ok := features.Vectorizer.Vocabulary["laptop"]; !ok {
		t.Error("expected laptop in vocabulary")
	}

	for i, row := range features.Rows {
		if n := floats.Norm(row, 2); math.Abs(n-1) > 1e-9 {
			t.Errorf("row %d: expected unit norm, got %f", i, n)
		}
	}

	// electronics appears in two documents, yoga in one
	v := features.Vectorizer
	if v.IDF[v.Vocabulary["electronics"]] >= v.IDF[v.Vocabulary["yoga"]] {
		t.Error("expected rarer term to have higher idf")
	}
}

func TestFitTFIDFMaxFeatures(t *testing.T) {
	features, err := FitTFIDF(sampleProducts(), 5)
	if err != nil {
		t.Fatalf("FitTFIDF failed: %v", err)
	}
	if got := len(features.Vectorizer.Terms); got != 5 {
		t.Errorf("expected 5 terms, got %d", got)
	}
	// laptop occurs three times across the corpus
	if _, ok := features.Vectorizer.Vocabulary["laptop"]; !ok {
		t.Error("expected most frequent term to be kept")
	}
}

func TestFitTFIDFEmpty(t *testing.T) {
	_, err := FitTFIDF(nil, MaxFeatures)
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestVectorizerQueryRow(t *testing.T) {
	features, err := FitTFIDF(sampleProducts(), MaxFeatures)
	if err != nil {
		t.Fatalf("FitTFIDF failed: %v", err)
	}

	row := features.Vectorizer.transformTokens(tokenize("gaming laptop"))
	sim := CosineSimilarity([][]float64{row, features.Rows[0], features.Rows[2]})
	if sim[0][1] <= sim[0][2] {
		t.Errorf("expected query closer to laptop (%f) than yoga mat (%f)", sim[0][1], sim[0][2])
	}

	empty := features.Vectorizer.transformTokens(tokenize("the and of"))
	if floats.Norm(empty, 2) != 0 {
		t.Error("expected zero vector for stop words only")
	}
}

func TestTrainingError(t *testing.T) {
	err := &TrainingError{Stage: "collaborative", Err: errors.New("boom")}

	if !IsTrainingError(err) {
		t.Error("should detect TrainingError")
	}
	if !errors.Is(err, domain.ErrTraining) {
		t.Error("TrainingError should match ErrTraining")
	}
	if IsTrainingError(errors.New("random error")) {
		t.Error("should not detect regular error as TrainingError")
	}
}
