// Package authz implements the Authorization Kernel (spec §4.11): pure
// functions over (principal, action, target) with no store access of their
// own. Callers resolve the target first, then ask authz whether the action
// is allowed.
package authz

import (
	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// Principal is the authenticated caller. A zero-value Principal (empty ID)
// represents an anonymous request.
type Principal struct {
	UserID  string
	IsAdmin bool
}

func (p Principal) IsAnonymous() bool { return p.UserID == "" }

// Action names the operation being authorized. These correspond to spec §4.11.
type Action string

const (
	ActionReadAgent               Action = "read_agent"
	ActionExecuteAgent            Action = "execute_agent"
	ActionListContestSubmissions  Action = "list_contest_submissions"
	ActionSubmitToContest         Action = "submit_to_contest"
	ActionAssignJudge             Action = "assign_judge"
	ActionRemoveJudge             Action = "remove_judge"
	ActionVoteInContest           Action = "vote_in_contest"
	ActionViewContestDetail       Action = "view_contest_detail"
)

// requireAuthenticated is the common first check shared by every action:
// a principal must be known before ownership/membership even makes sense.
func requireAuthenticated(p Principal) error {
	if p.IsAnonymous() {
		return errs.New(errs.KindUnauthorized, "authentication required")
	}
	return nil
}

// AuthorizeReadAgent allows reading an agent's metadata and prompt to the
// owner, an admin, or anyone when the agent is public.
func AuthorizeReadAgent(p Principal, agent *models.Agent) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if p.IsAdmin || p.UserID == agent.OwnerID || agent.IsPublic {
		return nil
	}
	return errs.New(errs.KindForbidden, "agent is private")
}

// AuthorizeExecuteAgent allows invoking an agent to its owner, an admin, or
// anyone when the agent is public (spec §4.8 step 1).
func AuthorizeExecuteAgent(p Principal, agent *models.Agent) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if p.IsAdmin || p.UserID == agent.OwnerID || agent.IsPublic {
		return nil
	}
	return errs.New(errs.KindForbidden, "not permitted to execute this agent")
}

// AuthorizeCreateAgentPublic decides whether a caller's is_public=true request
// is honored. Non-admins are silently demoted rather than rejected (spec §6).
func AuthorizeCreateAgentPublic(p Principal, requestedPublic bool) bool {
	return requestedPublic && p.IsAdmin
}

// AuthorizeListContestSubmissions allows the contest creator, an admin, or
// any assigned judge to list submissions before results are public.
func AuthorizeListContestSubmissions(p Principal, contest *models.Contest, isJudge bool) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if p.IsAdmin || p.UserID == contest.CreatorID || isJudge || contest.Status == models.ContestStatusClosed {
		return nil
	}
	return errs.New(errs.KindForbidden, "not permitted to list submissions yet")
}

// AuthorizeSubmitToContest requires the contest to be open and, when
// author_restrictions is set, the caller must not already have a submission
// (enforced by the caller against the store; this only checks contest state).
func AuthorizeSubmitToContest(p Principal, contest *models.Contest) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if contest.Status != models.ContestStatusOpen {
		return errs.New(errs.KindInvalidState, "contest is not accepting submissions")
	}
	return nil
}

// AuthorizeAssignJudge and AuthorizeRemoveJudge are creator/admin-only.
func AuthorizeAssignJudge(p Principal, contest *models.Contest) error {
	return requireCreatorOrAdmin(p, contest)
}

func AuthorizeRemoveJudge(p Principal, contest *models.Contest) error {
	return requireCreatorOrAdmin(p, contest)
}

func requireCreatorOrAdmin(p Principal, contest *models.Contest) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if p.IsAdmin || p.UserID == contest.CreatorID {
		return nil
	}
	return errs.New(errs.KindForbidden, "only the contest creator or an admin may do this")
}

// AuthorizeVoteInContest requires the contest be in evaluation and the caller
// be the specific judge attached to contestJudge.
func AuthorizeVoteInContest(p Principal, contest *models.Contest, contestJudge *models.ContestJudge) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if contest.Status != models.ContestStatusEvaluation {
		return errs.New(errs.KindInvalidState, "contest is not in evaluation")
	}
	if contestJudge.Kind != models.JudgeKindHuman || contestJudge.UserID != p.UserID {
		return errs.New(errs.KindForbidden, "caller is not the assigned judge")
	}
	return nil
}

// AuthorizeViewContestDetail implements the password gate (spec §4.11):
// viewing details of a password-protected contest requires the correct
// password, or membership in {creator, admin}.
func AuthorizeViewContestDetail(p Principal, contest *models.Contest, providedPassword string) error {
	if !contest.PasswordProtected {
		return nil
	}
	if !p.IsAnonymous() && (p.IsAdmin || p.UserID == contest.CreatorID) {
		return nil
	}
	if providedPassword != "" && providedPassword == contest.Password {
		return nil
	}
	return errs.New(errs.KindForbidden, "incorrect or missing contest password")
}
