package models

// Level represents the difficulty of a learning path
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Valid reports whether the level is one of the known values
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// LearningPath is an immutable catalog entry
type LearningPath struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	DurationMonths int    `json:"durationMonths"`
	Level          Level  `json:"level"`
	Category       string `json:"category"`
	CourseCount    int    `json:"courseCount"`
	ImageURL       string `json:"imageSrc,omitempty"`
}

// Career represents a career suggestion with a fixed match score
type Career struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	MatchScore  int      `json:"matchScore"` // 0-100
	Salary      string   `json:"salary"`
	GrowthRate  string   `json:"growthRate"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// LearningPathList is returned by the filtered listing endpoints
type LearningPathList struct {
	LearningPaths []*LearningPath `json:"learningPaths"`
	Total         int             `json:"total"`
	CatalogSize   int             `json:"catalogSize"`
}
