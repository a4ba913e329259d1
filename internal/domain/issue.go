package domain

import (
	"fmt"
	"time"
)

type Issue struct {
	ID          string
	ProjectID   string
	Key         string
	Number      int
	Type        string
	Title       string
	Description string
	StatusID    string
	Priority    Priority
	AssigneeID  *string
	ReporterID  string
	EpicID      *string
	SprintID    *string
	StoryPoints *int
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MakeIssueKey builds the canonical issue key for a project key and number,
// e.g. ("PROJ", 42) -> "PROJ-42".
func MakeIssueKey(projectKey string, number int) string {
	return fmt.Sprintf("%s-%d", projectKey, number)
}

type Comment struct {
	ID        string
	IssueID   string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attachment holds file metadata; the bytes live under the data directory
// at StoredPath.
type Attachment struct {
	ID          string
	IssueID     string
	UploaderID  *string
	Filename    string
	StoredPath  string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}
