package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/terra-clan/pathfinder/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNewLoaderServesDefaults(t *testing.T) {
	loader := NewLoader()

	paths := loader.LearningPaths()
	if len(paths) != 6 {
		t.Fatalf("expected 6 default learning paths, got %d", len(paths))
	}
	if paths[0].Title != "Data Science Fundamentals" {
		t.Errorf("unexpected first path: %s", paths[0].Title)
	}

	ml := loader.GetLearningPath("5")
	if ml == nil {
		t.Fatal("learning path 5 not found")
	}
	if ml.Level != models.LevelAdvanced {
		t.Errorf("expected level Advanced, got %s", ml.Level)
	}

	careers := loader.Careers()
	if len(careers) != 4 {
		t.Fatalf("expected 4 careers, got %d", len(careers))
	}
	for i := 1; i < len(careers); i++ {
		if careers[i-1].MatchScore < careers[i].MatchScore {
			t.Errorf("careers not sorted by match score: %d before %d", careers[i-1].MatchScore, careers[i].MatchScore)
		}
	}
	if careers[0].Title != "UX/UI Designer" {
		t.Errorf("expected best match UX/UI Designer, got %s", careers[0].Title)
	}
}

func TestLearningPathsReturnsCopy(t *testing.T) {
	loader := NewLoader()

	paths := loader.LearningPaths()
	paths[0] = nil

	if loader.LearningPaths()[0] == nil {
		t.Error("mutating the returned slice changed the catalog")
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "learning-paths", "01-go.yaml"), `
id: go-basics
title: Go Basics
description: Learn the Go language
duration_months: 2
level: Beginner
category: Development
course_count: 4
`)
	writeFile(t, filepath.Join(dir, "learning-paths", "02-distributed.yml"), `
title: Distributed Systems
description: Consensus and replication
duration_months: 7
level: Advanced
category: Development
course_count: 11
`)
	// invalid level is skipped
	writeFile(t, filepath.Join(dir, "learning-paths", "03-broken.yaml"), `
title: Broken
duration_months: 3
level: Expert
`)
	writeFile(t, filepath.Join(dir, "learning-paths", "README.md"), "not a path")
	writeFile(t, filepath.Join(dir, "careers.yaml"), `
careers:
  - id: sre
    title: Site Reliability Engineer
    match_score: 91
    skills: [Go, Linux]
  - id: dba
    title: Database Administrator
    match_score: 60
`)

	loader := NewLoader()
	if err := loader.LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	paths := loader.LearningPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 learning paths, got %d", len(paths))
	}
	if paths[0].ID != "go-basics" {
		t.Errorf("expected first id go-basics, got %s", paths[0].ID)
	}
	if paths[1].ID != "02-distributed" {
		t.Errorf("expected id from file name, got %s", paths[1].ID)
	}
	if paths[1].DurationMonths != 7 {
		t.Errorf("expected duration 7, got %d", paths[1].DurationMonths)
	}

	if loader.GetLearningPath("1") != nil {
		t.Error("default catalog should have been replaced")
	}

	sre := loader.GetCareer("sre")
	if sre == nil {
		t.Fatal("career sre not found")
	}
	if len(sre.Skills) != 2 {
		t.Errorf("expected 2 skills, got %d", len(sre.Skills))
	}
	if got := loader.Careers()[0].ID; got != "sre" {
		t.Errorf("expected sre first, got %s", got)
	}
}

func TestLoadFromDirKeepsDefaultsWhenEmpty(t *testing.T) {
	loader := NewLoader()
	if err := loader.LoadFromDir(t.TempDir()); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}
	if len(loader.LearningPaths()) != 6 {
		t.Error("expected defaults to survive an empty catalog dir")
	}
}

func TestLoadFromDirMissing(t *testing.T) {
	loader := NewLoader()
	if err := loader.LoadFromDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoadCareersRejectsBadScore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "careers.yaml"), `
careers:
  - id: x
    title: X
    match_score: 140
`)
	loader := NewLoader()
	if err := loader.LoadFromDir(dir); err == nil {
		t.Error("expected error for out-of-range match score")
	}
}
