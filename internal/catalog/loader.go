package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/pathfinder/internal/models"
)

// Loader holds the read-only learning path catalog and career list.
// A fresh Loader serves the built-in defaults until LoadFromDir finds files.
type Loader struct {
	mu      sync.RWMutex
	paths   []*models.LearningPath
	byID    map[string]*models.LearningPath
	careers map[string]*models.Career
}

// NewLoader creates a loader seeded with the built-in catalog
func NewLoader() *Loader {
	l := &Loader{}
	l.setPaths(DefaultLearningPaths())
	l.setCareers(DefaultCareers())
	return l
}

// LoadFromDir loads the catalog from a directory laid out as
//
//	<dir>/learning-paths/*.yaml  one learning path per file, ordered by file name
//	<dir>/careers.yaml           list of careers
//
// Missing parts keep their current contents.
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading catalog from directory", "dir", dir)

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to stat catalog dir: %w", err)
	}

	pathsDir := filepath.Join(dir, "learning-paths")
	if _, err := os.Stat(pathsDir); err == nil {
		paths, err := l.loadLearningPaths(pathsDir)
		if err != nil {
			return err
		}
		if len(paths) > 0 {
			l.setPaths(paths)
		}
		slog.Info("learning paths loaded", "count", len(paths))
	}

	careersFile := filepath.Join(dir, "careers.yaml")
	if _, err := os.Stat(careersFile); err == nil {
		careers, err := loadCareers(careersFile)
		if err != nil {
			return err
		}
		if len(careers) > 0 {
			l.setCareers(careers)
		}
		slog.Info("careers loaded", "count", len(careers))
	}

	return nil
}

// loadLearningPaths reads every YAML file from dir in name order
func (l *Loader) loadLearningPaths(dir string) ([]*models.LearningPath, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read learning paths dir: %w", err)
	}

	var paths []*models.LearningPath
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path, err := loadLearningPath(filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Warn("failed to load learning path", "file", entry.Name(), "error", err)
			continue
		}

		if seen[path.ID] {
			slog.Warn("duplicate learning path id", "file", entry.Name(), "id", path.ID)
			continue
		}
		seen[path.ID] = true
		paths = append(paths, path)
	}

	return paths, nil
}

// loadLearningPath loads a single learning path YAML file
func loadLearningPath(file string) (*models.LearningPath, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var lf learningPathFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Use id from YAML, fall back to filename without extension
	id := lf.ID
	if id == "" {
		base := filepath.Base(file)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if lf.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if lf.DurationMonths <= 0 {
		return nil, fmt.Errorf("duration_months must be positive")
	}
	level := models.Level(lf.Level)
	if !level.Valid() {
		return nil, fmt.Errorf("invalid level %q", lf.Level)
	}

	return &models.LearningPath{
		ID:             id,
		Title:          lf.Title,
		Description:    lf.Description,
		DurationMonths: lf.DurationMonths,
		Level:          level,
		Category:       lf.Category,
		CourseCount:    lf.CourseCount,
		ImageURL:       lf.Image,
	}, nil
}

// loadCareers loads the careers list file
func loadCareers(file string) ([]*models.Career, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read careers file: %w", err)
	}

	var cf careersFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse careers YAML: %w", err)
	}

	careers := make([]*models.Career, 0, len(cf.Careers))
	for i, c := range cf.Careers {
		if c.ID == "" || c.Title == "" {
			return nil, fmt.Errorf("career %d: id and title are required", i)
		}
		if c.MatchScore < 0 || c.MatchScore > 100 {
			return nil, fmt.Errorf("career %s: match_score must be within 0-100", c.ID)
		}
		careers = append(careers, &models.Career{
			ID:          c.ID,
			Title:       c.Title,
			MatchScore:  c.MatchScore,
			Salary:      c.Salary,
			GrowthRate:  c.GrowthRate,
			Description: c.Description,
			Skills:      c.Skills,
		})
	}
	return careers, nil
}

func (l *Loader) setPaths(paths []*models.LearningPath) {
	byID := make(map[string]*models.LearningPath, len(paths))
	for _, p := range paths {
		byID[p.ID] = p
	}

	l.mu.Lock()
	l.paths = paths
	l.byID = byID
	l.mu.Unlock()
}

func (l *Loader) setCareers(careers []*models.Career) {
	byID := make(map[string]*models.Career, len(careers))
	for _, c := range careers {
		byID[c.ID] = c
	}

	l.mu.Lock()
	l.careers = byID
	l.mu.Unlock()
}

// LearningPaths returns the catalog in its fixed order.
// The returned slice is a copy; the records themselves must not be modified.
func (l *Loader) LearningPaths() []*models.LearningPath {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.LearningPath, len(l.paths))
	copy(result, l.paths)
	return result
}

// GetLearningPath returns a learning path by ID
func (l *Loader) GetLearningPath(id string) *models.LearningPath {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byID[id]
}

// Careers returns all careers, best match first
func (l *Loader) Careers() []*models.Career {
	l.mu.RLock()
	result := make([]*models.Career, 0, len(l.careers))
	for _, c := range l.careers {
		result = append(result, c)
	}
	l.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].MatchScore != result[j].MatchScore {
			return result[i].MatchScore > result[j].MatchScore
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// GetCareer returns a career by ID
func (l *Loader) GetCareer(id string) *models.Career {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.careers[id]
}

// --- YAML file structs ---

// learningPathFile represents the YAML structure of a learning path file
type learningPathFile struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	DurationMonths int    `yaml:"duration_months"`
	Level          string `yaml:"level"`
	Category       string `yaml:"category"`
	CourseCount    int    `yaml:"course_count"`
	Image          string `yaml:"image"`
}

// careersFile represents the YAML structure of careers.yaml
type careersFile struct {
	Careers []struct {
		ID          string   `yaml:"id"`
		Title       string   `yaml:"title"`
		MatchScore  int      `yaml:"match_score"`
		Salary      string   `yaml:"salary"`
		GrowthRate  string   `yaml:"growth_rate"`
		Description string   `yaml:"description"`
		Skills      []string `yaml:"skills"`
	} `yaml:"careers"`
}
