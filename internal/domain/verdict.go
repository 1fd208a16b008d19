package domain

import (
	"fmt"
	"strings"
)

// ReasonCode names why a competition was rejected. The set is closed.
type ReasonCode string

const (
	// ReasonInsufficientOfficials means fewer judges than the gate requires.
	ReasonInsufficientOfficials ReasonCode = "insufficient_officials"
	// ReasonEmptyParticipants means no participants were extracted.
	ReasonEmptyParticipants ReasonCode = "empty_participants"
	// ReasonEmptyRounds means no rounds were extracted.
	ReasonEmptyRounds ReasonCode = "empty_rounds"
	// ReasonBelowMinimumDances means fewer contested dances than the level requires.
	ReasonBelowMinimumDances ReasonCode = "below_minimum_dances"
	// ReasonMissingFinalAnchor means the last round carries only qualification marks.
	ReasonMissingFinalAnchor ReasonCode = "missing_final_anchor"
	// ReasonIncompleteRound means a judge x participant (x dance) cell is missing.
	ReasonIncompleteRound ReasonCode = "incomplete_round"
	// ReasonScoreMathMismatch means a WDSF total matches neither mean nor sum.
	ReasonScoreMathMismatch ReasonCode = "score_math_mismatch"
	// ReasonParticipantTeleported means a bib appears later that was absent from the first round.
	ReasonParticipantTeleported ReasonCode = "participant_teleported"
	// ReasonProgressionViolation means a round's field is not a shrinking subset of the previous one.
	ReasonProgressionViolation ReasonCode = "progression_violation"
	// ReasonRankInconsistentWithFinalRank means a declared rank implies presence in a round the bib is missing from.
	ReasonRankInconsistentWithFinalRank ReasonCode = "rank_inconsistent_with_final_rank"
	// ReasonScrutineeringMismatch means the recomputed final rank differs from the declared one.
	ReasonScrutineeringMismatch ReasonCode = "scrutineering_mismatch"
)

// Reason is one structured rejection finding. Only the fields relevant to
// the code are set.
type Reason struct {
	Code  ReasonCode `json:"code" yaml:"code"`
	Round string     `json:"round,omitempty" yaml:"round,omitempty"`
	Judge JudgeCode  `json:"judge,omitempty" yaml:"judge,omitempty"`
	Bib   Bib        `json:"bib,omitempty" yaml:"bib,omitempty"`
	Dance Dance      `json:"dance,omitempty" yaml:"dance,omitempty"`
	// Expected is the declared final rank or the required dance count.
	Expected int `json:"expected,omitempty" yaml:"expected,omitempty"`
	// Actual is the recomputed rank or the contested dance count.
	Actual int `json:"actual,omitempty" yaml:"actual,omitempty"`
}

// String renders the reason as code plus its populated context.
func (r Reason) String() string {
	var b strings.Builder
	b.WriteString(string(r.Code))
	var parts []string
	if r.Round != "" {
		parts = append(parts, fmt.Sprintf("round=%q", r.Round))
	}
	if r.Judge != "" {
		parts = append(parts, "judge="+string(r.Judge))
	}
	if r.Bib != 0 {
		parts = append(parts, fmt.Sprintf("bib=%d", r.Bib))
	}
	if r.Dance != "" {
		parts = append(parts, "dance="+string(r.Dance))
	}
	if r.Code == ReasonScrutineeringMismatch || r.Code == ReasonBelowMinimumDances {
		parts = append(parts, fmt.Sprintf("expected=%d", r.Expected), fmt.Sprintf("actual=%d", r.Actual))
	}
	if len(parts) > 0 {
		b.WriteString("(" + strings.Join(parts, ", ") + ")")
	}
	return b.String()
}

// Verdict is the outcome of the fidelity gate for one competition.
type Verdict struct {
	// Accepted is true only when Reasons is empty.
	Accepted bool `json:"accepted" yaml:"accepted"`

	// Reasons lists every finding of the first failing check.
	Reasons []Reason `json:"reasons,omitempty" yaml:"reasons,omitempty"`

	// Ranks holds the recomputed overall ranks when the final round carries
	// placements. It is nil for WDSF finals.
	Ranks map[Bib]int `json:"ranks,omitempty" yaml:"ranks,omitempty"`

	// DanceRanks holds the recomputed per-dance ranks of the final round.
	DanceRanks map[Dance]map[Bib]int `json:"dance_ranks,omitempty" yaml:"dance_ranks,omitempty"`
}

// Accept builds an accepting verdict.
func Accept() Verdict { return Verdict{Accepted: true} }

// Reject builds a rejecting verdict from its findings.
func Reject(reasons ...Reason) Verdict {
	return Verdict{Reasons: reasons}
}

// Has reports whether the verdict carries a reason with the given code.
func (v Verdict) Has(code ReasonCode) bool {
	for _, r := range v.Reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

// Err returns nil for accepted verdicts and a *RejectionError otherwise.
func (v Verdict) Err() error {
	if v.Accepted {
		return nil
	}
	return &RejectionError{Reasons: v.Reasons}
}
