package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Well-known IDs for the seeded global statuses. Projects without their own
// statuses fall back to these.
const (
	SeedStatusTodo       = "00000000-0000-4000-8000-000000000001"
	SeedStatusInProgress = "00000000-0000-4000-8000-000000000002"
	SeedStatusInReview   = "00000000-0000-4000-8000-000000000003"
	SeedStatusDone       = "00000000-0000-4000-8000-000000000004"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		username     TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		email        TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		key         TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		is_archived INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS project_members (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role       TEXT NOT NULL DEFAULT 'developer'
		           CHECK(role IN ('admin','manager','developer','viewer')),
		joined_at  TEXT NOT NULL,
		PRIMARY KEY (project_id, user_id)
	)`,

	// project_id NULL marks a global status shared by all projects.
	`CREATE TABLE IF NOT EXISTS statuses (
		id         TEXT PRIMARY KEY,
		project_id TEXT REFERENCES projects(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT 'todo'
		           CHECK(category IN ('todo','in_progress','done')),
		color      TEXT NOT NULL DEFAULT '#8a3ffc',
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_statuses_project ON statuses(project_id)`,

	// Deleting a status cascades to its transition rows; issues still
	// referencing a status block its deletion (RESTRICT on issues.status_id).
	`CREATE TABLE IF NOT EXISTS workflow_transitions (
		id             TEXT PRIMARY KEY,
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		from_status_id TEXT NOT NULL REFERENCES statuses(id) ON DELETE CASCADE,
		to_status_id   TEXT NOT NULL REFERENCES statuses(id) ON DELETE CASCADE,
		name           TEXT NOT NULL DEFAULT '',
		allowed_roles  TEXT NOT NULL DEFAULT '',
		UNIQUE (project_id, from_status_id, to_status_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_transitions_project ON workflow_transitions(project_id)`,

	`CREATE TABLE IF NOT EXISTS issue_sequences (
		project_id  TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		next_number INTEGER NOT NULL CHECK(next_number > 0)
	)`,

	`CREATE TABLE IF NOT EXISTS sprints (
		id                     TEXT PRIMARY KEY,
		project_id             TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name                   TEXT NOT NULL,
		goal                   TEXT NOT NULL DEFAULT '',
		start_date             TEXT NOT NULL,
		end_date               TEXT NOT NULL,
		status                 TEXT NOT NULL DEFAULT 'planned'
		                       CHECK(status IN ('planned','active','completed')),
		initial_story_points   INTEGER,
		completed_story_points INTEGER,
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL,
		CHECK (start_date < end_date)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sprints_project ON sprints(project_id, status)`,

	`CREATE TABLE IF NOT EXISTS issues (
		id           TEXT PRIMARY KEY,
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		key          TEXT NOT NULL UNIQUE,
		issue_number INTEGER NOT NULL,
		type         TEXT NOT NULL DEFAULT 'task',
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		status_id    TEXT NOT NULL REFERENCES statuses(id) ON DELETE RESTRICT,
		priority     TEXT NOT NULL DEFAULT 'medium'
		             CHECK(priority IN ('lowest','low','medium','high','highest')),
		assignee_id  TEXT REFERENCES users(id) ON DELETE SET NULL,
		reporter_id  TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		epic_id      TEXT REFERENCES issues(id) ON DELETE SET NULL,
		sprint_id    TEXT REFERENCES sprints(id) ON DELETE SET NULL,
		story_points INTEGER,
		due_date     TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_issues_project_status ON issues(project_id, status_id)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_project_number ON issues(project_id, issue_number)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_sprint ON issues(sprint_id)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id         TEXT PRIMARY KEY,
		issue_id   TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		author_id  TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_comments_issue ON comments(issue_id)`,

	`CREATE TABLE IF NOT EXISTS attachments (
		id           TEXT PRIMARY KEY,
		issue_id     TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		uploader_id  TEXT REFERENCES users(id) ON DELETE SET NULL,
		filename     TEXT NOT NULL,
		stored_path  TEXT NOT NULL,
		size         INTEGER NOT NULL DEFAULT 0,
		content_type TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_attachments_issue ON attachments(issue_id)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id         TEXT PRIMARY KEY,
		issue_id   TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		user_id    TEXT REFERENCES users(id) ON DELETE SET NULL,
		action     TEXT NOT NULL,
		payload    TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_issue ON activities(issue_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS boards (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		board_type TEXT NOT NULL DEFAULT 'kanban'
		           CHECK(board_type IN ('kanban','scrum')),
		columns    TEXT NOT NULL DEFAULT '[]',
		sprint_id  TEXT REFERENCES sprints(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_boards_project ON boards(project_id)`,

	// Seed global default statuses
	`INSERT OR IGNORE INTO statuses (id, project_id, name, category, color, sort_order) VALUES
		('` + SeedStatusTodo + `',       NULL, 'To Do',       'todo',        '#8d8d8d', 1),
		('` + SeedStatusInProgress + `', NULL, 'In Progress', 'in_progress', '#1192e8', 2),
		('` + SeedStatusInReview + `',   NULL, 'In Review',   'in_progress', '#8a3ffc', 3),
		('` + SeedStatusDone + `',       NULL, 'Done',        'done',        '#24a148', 4)`,
}
