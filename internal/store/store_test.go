package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/actuallystonmai/product-recommender/internal/domain"
	"github.com/actuallystonmai/product-recommender/internal/model"
)

func TestSaveAndLoad(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	m, err := model.BuildInteractionMatrix([]domain.Interaction{
		{UserID: "u1", ProductID: "p1", Type: domain.InteractionPurchase},
		{UserID: "u2", ProductID: "p1", Type: domain.InteractionView},
	})
	if err != nil {
		t.Fatalf("BuildInteractionMatrix failed: %v", err)
	}
	bundle := model.CollaborativeBundle{
		Matrix:         m,
		UserSimilarity: model.CosineSimilarity(m.Values),
		TrainedAt:      time.Now().UTC().Truncate(time.Second),
	}

	if err := s.SaveAll(map[string]any{model.KindCollaborative: &bundle}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var loaded model.CollaborativeBundle
	meta, err := s.Load(model.KindCollaborative, &loaded)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if meta.Kind != model.KindCollaborative || meta.Checksum == "" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	lm := loaded.Matrix
	if got := lm.Values[lm.UserIndex["u1"]][lm.ProductIndex["p1"]]; got != 5 {
		t.Errorf("expected cell 5, got %v", got)
	}
	if loaded.UserSimilarity[0][1] != bundle.UserSimilarity[0][1] {
		t.Error("similarity changed across save/load")
	}
	if !loaded.TrainedAt.Equal(bundle.TrainedAt) {
		t.Errorf("expected trained at %v, got %v", bundle.TrainedAt, loaded.TrainedAt)
	}
}

func TestLoadAbsent(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	var bundle model.ContentBundle
	_, err = s.Load(model.KindContent, &bundle)
	if !errors.Is(err, domain.ErrModelAbsent) {
		t.Errorf("expected ErrModelAbsent, got %v", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.SaveAll(map[string]any{model.KindContent: &model.ContentBundle{TrainedAt: time.Now()}}); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "content.gob.gz" {
		t.Errorf("expected only content.gob.gz, got %v", entries)
	}
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "content.gob.gz"), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	var bundle model.ContentBundle
	_, err = s.Load(model.KindContent, &bundle)
	if err == nil || errors.Is(err, domain.ErrModelAbsent) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestNewStoreEmptyRoot(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Error("expected error for empty root")
	}
}

func TestSaveAllSharesGeneration(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	err = s.SaveAll(map[string]any{
		model.KindCollaborative: &model.CollaborativeBundle{TrainedAt: time.Now()},
		model.KindContent:       &model.ContentBundle{TrainedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	var collab model.CollaborativeBundle
	var content model.ContentBundle
	m1, err := s.Load(model.KindCollaborative, &collab)
	if err != nil {
		t.Fatalf("Load collaborative failed: %v", err)
	}
	m2, err := s.Load(model.KindContent, &content)
	if err != nil {
		t.Fatalf("Load content failed: %v", err)
	}
	if m1.Generation == "" || m1.Generation != m2.Generation {
		t.Errorf("expected one shared generation, got %q and %q", m1.Generation, m2.Generation)
	}
}

func TestSaveAllFailureKeepsPreviousFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	old := &model.CollaborativeBundle{UserSimilarity: [][]float64{{1}}}
	if err := s.SaveAll(map[string]any{model.KindCollaborative: old}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	var before model.CollaborativeBundle
	oldMeta, err := s.Load(model.KindCollaborative, &before)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// channels cannot be gob-encoded, so the content bundle fails after the
	// collaborative one has been staged
	err = s.SaveAll(map[string]any{
		model.KindCollaborative: &model.CollaborativeBundle{UserSimilarity: [][]float64{{1, 0}, {0, 1}}},
		model.KindContent:       make(chan int),
	})
	if err == nil {
		t.Fatal("expected SaveAll to fail")
	}

	var after model.CollaborativeBundle
	meta, err := s.Load(model.KindCollaborative, &after)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meta.Generation != oldMeta.Generation || len(after.UserSimilarity) != 1 {
		t.Error("collaborative bundle was replaced by a failed SaveAll")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the previous bundle on disk, got %v", entries)
	}
}
