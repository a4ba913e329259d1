package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportSchema is the top-level JSON structure for project import.
type ImportSchema struct {
	Project     ProjectImport      `json:"project"`
	Statuses    []StatusImport     `json:"statuses,omitempty"`
	Transitions []TransitionImport `json:"transitions,omitempty"`
	Sprints     []SprintImport     `json:"sprints,omitempty"`
	Issues      []IssueImport      `json:"issues"`
}

// ProjectImport defines the project-level fields in the import file.
type ProjectImport struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// StatusImport defines a project status in the import file. Refs are local
// to the file and resolve to generated IDs during conversion.
type StatusImport struct {
	Ref      string `json:"ref"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Color    string `json:"color,omitempty"`
	Order    int    `json:"order,omitempty"`
}

// TransitionImport defines a workflow transition between two imported statuses.
type TransitionImport struct {
	FromRef      string   `json:"from_ref"`
	ToRef        string   `json:"to_ref"`
	Name         string   `json:"name,omitempty"`
	AllowedRoles []string `json:"allowed_roles,omitempty"`
}

// SprintImport defines a sprint in the import file.
type SprintImport struct {
	Ref       string `json:"ref"`
	Name      string `json:"name"`
	Goal      string `json:"goal,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status,omitempty"`
}

// IssueImport defines an issue in the import file.
type IssueImport struct {
	Ref         string  `json:"ref"`
	Title       string  `json:"title"`
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	StatusRef   string  `json:"status_ref,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	StoryPoints *int    `json:"story_points,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	SprintRef   *string `json:"sprint_ref,omitempty"`
	EpicRef     *string `json:"epic_ref,omitempty"`
}

// LoadImportSchema reads and parses a project import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
