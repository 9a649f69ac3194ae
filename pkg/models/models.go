// Package models defines the Core's domain entities (§3 of the spec).
//
// These are plain structs, not an ORM's generated types — persistence lives
// in pkg/store, which maps rows to and from these structs explicitly.
package models

import "time"

// AgentType distinguishes the two kinds of agent the Core can execute.
type AgentType string

const (
	AgentTypeWriter AgentType = "writer"
	AgentTypeJudge  AgentType = "judge"
)

func (t AgentType) IsValid() bool {
	return t == AgentTypeWriter || t == AgentTypeJudge
}

// ContestStatus is the lifecycle state of a Contest.
type ContestStatus string

const (
	ContestStatusOpen       ContestStatus = "open"
	ContestStatusEvaluation ContestStatus = "evaluation"
	ContestStatusClosed     ContestStatus = "closed"
)

// ExecutionStatus is the lifecycle state of an AgentExecution.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// LedgerKind classifies a CreditTransaction row.
type LedgerKind string

const (
	LedgerKindPurchase    LedgerKind = "purchase"
	LedgerKindConsumption LedgerKind = "consumption"
	LedgerKindRefund      LedgerKind = "refund"
	LedgerKindAdjustment  LedgerKind = "adjustment"
)

// User is a platform account. Credits are an integer prepaid balance.
type User struct {
	ID        string
	Username  string
	Email     string
	Credits   int64
	IsAdmin   bool
	CreatedAt time.Time
}

// Agent is a named, owned, prompt-carrying record invoked as a writer or
// judge. Prompt is the "personality prompt" injected by the strategy layer.
type Agent struct {
	ID          string
	OwnerID     string
	Type        AgentType
	Name        string
	Description string
	Prompt      string
	IsPublic    bool
	Version     int
	CreatedAt   time.Time
}

// Contest is a literary contest accepting text submissions and judge votes.
type Contest struct {
	ID                string
	CreatorID         string
	Title             string
	Description       string
	Status            ContestStatus
	PasswordProtected bool
	Password          string // empty when not PasswordProtected
	PubliclyListed    bool
	JudgeRestrictions bool
	AuthorRestrictions bool
	MinVotesRequired  int
	EndDate           *time.Time
	CreatedAt         time.Time
}

// ContestText is a submission entered into a Contest.
type ContestText struct {
	ID             string
	ContestID      string
	OwnerID        string
	Title          string
	Content        string
	Author         string // display author, may reference the AI agent that wrote it
	SubmissionDate time.Time
	Ranking        *int // nil until the contest closes
	TotalPoints    *int
}

// JudgeKind distinguishes a human judge from an AI-agent judge — the XOR
// invariant of spec.md's ContestJudge becomes this tagged sum at the domain
// boundary (per §9 DESIGN NOTES).
type JudgeKind string

const (
	JudgeKindHuman JudgeKind = "human"
	JudgeKindAgent JudgeKind = "agent"
)

// ContestJudge assigns exactly one of {UserID, AgentID} as the judge of a
// Contest.
type ContestJudge struct {
	ID             string
	ContestID      string
	Kind           JudgeKind
	UserID         string // set iff Kind == JudgeKindHuman
	AgentID        string // set iff Kind == JudgeKindAgent
	HasVoted       bool
	AssignmentDate time.Time
}

// Vote is a single judge's placement of a single text.
type Vote struct {
	ID              string
	ContestID       string
	ContestJudgeID  string
	TextID          string
	TextPlace       *int // 1, 2, 3, or nil
	Comment         string
	IsAI            bool
	Model           string // set iff IsAI
	AgentExecutionID string // set iff IsAI
	CreatedAt       time.Time
}

// AgentExecution is a durable record of one agent invocation.
type AgentExecution struct {
	ID           string
	AgentID      string // empty is allowed for ad hoc/free-form invocations
	OwnerID      string
	Type         AgentType
	Model        string
	Status       ExecutionStatus
	ResultID     string // writer: produced ContestText.ID; judge: empty
	ErrorMessage string
	CreditsUsed  int64
	ParsingFallbackUsed bool
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// CreditTransaction is one append-only row of the credit ledger. UserID is
// nullable so that user deletion preserves the row (§3).
type CreditTransaction struct {
	ID          string
	UserID      string // may be empty once the referenced user is deleted
	Amount      int64  // signed
	Kind        LedgerKind
	Description string
	Model       string
	Tokens      int
	RealCostUSD float64
	CreatedAt   time.Time
}
