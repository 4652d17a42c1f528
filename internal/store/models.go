package store

import "time"

type Session struct {
	ID            int64      `json:"id"`
	ProjectName   string     `json:"projectName"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	Duration      *int64     `json:"duration"` // seconds
	IsActive      bool       `json:"isActive"`
	LinesWritten  int        `json:"linesWritten"`
	LinesDeleted  int        `json:"linesDeleted"`
	FilesModified int        `json:"filesModified"`
	Productivity  int        `json:"productivity"` // 0-100
	Notes         *string    `json:"notes"`
	Tags          *string    `json:"tags"` // JSON array as string
}

type Commit struct {
	ID           int64     `json:"id"`
	Repository   string    `json:"repository"`
	Message      string    `json:"message"`
	LinesChanged int       `json:"linesChanged"`
	LinesAdded   int       `json:"linesAdded"`
	LinesDeleted int       `json:"linesDeleted"`
	FilesChanged int       `json:"filesChanged"`
	CommitHash   *string   `json:"commitHash"`
	Branch       string    `json:"branch"`
	Timestamp    time.Time `json:"timestamp"`
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Goals holds the targets for one calendar day.
type Goals struct {
	ID               int64  `json:"id"`
	Date             string `json:"date"`
	CodingTimeTarget int    `json:"codingTimeTarget"` // minutes
	CommitsTarget    int    `json:"commitsTarget"`
	TasksTarget      int    `json:"tasksTarget"`
}

type Activity struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type GitSync struct {
	ID            int64     `json:"id"`
	Repository    string    `json:"repository"`
	Branch        string    `json:"branch"`
	Action        string    `json:"action"` // pull, push, sync
	CommitMessage *string   `json:"commitMessage"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Break struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`     // short, long, custom
	Duration  int        `json:"duration"` // minutes
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Issue struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	Category       string     `json:"category"`
	Assignee       *string    `json:"assignee"`
	Repository     *string    `json:"repository"`
	Branch         *string    `json:"branch"`
	LinesAffected  *int       `json:"linesAffected"`
	EstimatedHours *int       `json:"estimatedHours"`
	ActualHours    *int       `json:"actualHours"`
	Tags           *string    `json:"tags"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	ResolvedAt     *time.Time `json:"resolvedAt"`
}

// Metrics holds the daily counters and scores for one calendar day. Id and
// CreatedAt are left out of the JSON of a record that was never stored.
type Metrics struct {
	ID                 int64     `json:"id,omitzero"`
	Date               string    `json:"date"`
	TotalLinesWritten  int       `json:"totalLinesWritten"`
	TotalLinesDeleted  int       `json:"totalLinesDeleted"`
	TotalLinesModified int       `json:"totalLinesModified"`
	FilesModified      int       `json:"filesModified"`
	BugsFixed          int       `json:"bugsFixed"`
	FeaturesAdded      int       `json:"featuresAdded"`
	CodeQualityScore   int       `json:"codeQualityScore"`
	TestsCoverage      int       `json:"testsCoverage"`
	PerformanceScore   int       `json:"performanceScore"`
	CreatedAt          time.Time `json:"createdAt,omitzero"`
}

type FileChange struct {
	ID            int64     `json:"id"`
	FilePath      string    `json:"filePath"`
	Repository    string    `json:"repository"`
	ChangeType    string    `json:"changeType"` // added, modified, deleted
	LinesAdded    int       `json:"linesAdded"`
	LinesDeleted  int       `json:"linesDeleted"`
	LinesModified int       `json:"linesModified"`
	CommitID      *string   `json:"commitId"`
	SessionID     *int64    `json:"sessionId"`
	Timestamp     time.Time `json:"timestamp"`
}

// Activity types.
const (
	ActivitySession = "session"
	ActivityCommit  = "commit"
	ActivityTask    = "task"
	ActivityGit     = "git"
	ActivityBreak   = "break"
	ActivityIssue   = "issue"
	ActivityFile    = "file"
	ActivityBackup  = "backup"
	ActivityExport  = "export"
	ActivityRestore = "restore"
)

// Issue statuses.
const (
	IssueOpen       = "open"
	IssueInProgress = "in-progress"
	IssueResolved   = "resolved"
	IssueClosed     = "closed"
)

var (
	ActivityTypes   = []string{ActivitySession, ActivityCommit, ActivityTask, ActivityGit, ActivityBreak, ActivityIssue, ActivityFile, ActivityBackup, ActivityExport, ActivityRestore}
	GitActions      = []string{"pull", "push", "sync"}
	BreakTypes      = []string{"short", "long", "custom"}
	IssueStatuses   = []string{IssueOpen, IssueInProgress, IssueResolved, IssueClosed}
	IssuePriorities = []string{"low", "medium", "high", "critical"}
	IssueCategories = []string{"bug", "feature", "enhancement", "task"}
	FileChangeTypes = []string{"added", "modified", "deleted"}
)

// SessionPatch carries the fields of a partial session update. Nil fields
// are left untouched.
type SessionPatch struct {
	ProjectName   *string    `json:"projectName"`
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	Duration      *int64     `json:"duration"`
	IsActive      *bool      `json:"isActive"`
	LinesWritten  *int       `json:"linesWritten"`
	LinesDeleted  *int       `json:"linesDeleted"`
	FilesModified *int       `json:"filesModified"`
	Productivity  *int       `json:"productivity"`
	Notes         *string    `json:"notes"`
	Tags          *string    `json:"tags"`
}

type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type IssuePatch struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Status         *string `json:"status"`
	Priority       *string `json:"priority"`
	Category       *string `json:"category"`
	Assignee       *string `json:"assignee"`
	Repository     *string `json:"repository"`
	Branch         *string `json:"branch"`
	LinesAffected  *int    `json:"linesAffected"`
	EstimatedHours *int    `json:"estimatedHours"`
	ActualHours    *int    `json:"actualHours"`
	Tags           *string `json:"tags"`
}

// MetricsInput is the payload of a metrics upsert. Only non-nil counters are
// written when a record for Date already exists.
type MetricsInput struct {
	Date               string `json:"date"`
	TotalLinesWritten  *int   `json:"totalLinesWritten"`
	TotalLinesDeleted  *int   `json:"totalLinesDeleted"`
	TotalLinesModified *int   `json:"totalLinesModified"`
	FilesModified      *int   `json:"filesModified"`
	BugsFixed          *int   `json:"bugsFixed"`
	FeaturesAdded      *int   `json:"featuresAdded"`
	CodeQualityScore   *int   `json:"codeQualityScore"`
	TestsCoverage      *int   `json:"testsCoverage"`
	PerformanceScore   *int   `json:"performanceScore"`
}
