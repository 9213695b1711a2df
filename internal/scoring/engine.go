package scoring

import (
	"time"

	"github.com/google/uuid"
)

// Result is one scoring mode's verdict. All six modes are reported on every
// evaluation, achieved or not, so the result API can show the full breakdown.
type Result struct {
	Mode        int            `json:"mode"`
	Score       int            `json:"score"`
	Description string         `json:"description"`
	Achieved    bool           `json:"achieved"`
	Details     map[string]any `json:"details"`
}

type ProcessedPrediction struct {
	PredictionID   uuid.UUID `json:"predictionId"`
	UserID         uuid.UUID `json:"userId"`
	TotalScore     int       `json:"totalScore"`
	ScoringResults []Result  `json:"scoringResults"`
	ProcessedAt    time.Time `json:"processedAt"`
}

// Engine evaluates a user's group draw against the authoritative one.
// Placement is set membership per group: order inside a group never matters.
// The engine is pure, timestamps are the caller's business.
type Engine struct {
	homeTeamID string
}

func NewEngine(homeTeamID string) *Engine {
	return &Engine{homeTeamID: homeTeamID}
}

// Evaluate runs the six scoring modes and returns the total score, which is
// the maximum over the modes, together with every mode's result in fixed
// order 1..6.
func (e *Engine) Evaluate(userGroups, correctGroups Groups) (int, []Result) {
	results := []Result{
		e.checkMode1(userGroups, correctGroups),
		e.checkMode2(userGroups, correctGroups),
		e.checkMode3(userGroups, correctGroups),
		e.checkMode4(userGroups, correctGroups),
		e.checkMode5(userGroups, correctGroups),
		e.checkMode6(userGroups, correctGroups),
	}
	total := 0
	for _, r := range results {
		if r.Score > total {
			total = r.Score
		}
	}
	return total, results
}

// countPlacements tallies how many of the ground-truth placements appear in
// the user's same-labeled group, and how many placements exist at all.
func countPlacements(userGroups, correctGroups Groups) (correct, total int) {
	for _, label := range GroupLabels {
		userTeams := userGroups.Teams(label)
		for _, teamID := range correctGroups.Teams(label) {
			total++
			if containsTeam(userTeams, teamID) {
				correct++
			}
		}
	}
	return correct, total
}

// Mode 1: every one of the 48 placements is correct.
func (e *Engine) checkMode1(userGroups, correctGroups Groups) Result {
	correct, total := countPlacements(userGroups, correctGroups)
	achieved := correct == total && total == TotalTeams
	score := 0
	if achieved {
		score = 100
	}
	return Result{
		Mode:        1,
		Score:       score,
		Description: "All 48 teams in correct groups",
		Achieved:    achieved,
		Details:     map[string]any{"correctTeams": correct, "totalTeams": total},
	}
}

// Mode 2: at most 2 placements missing.
func (e *Engine) checkMode2(userGroups, correctGroups Groups) Result {
	correct, total := countPlacements(userGroups, correctGroups)
	wrong := total - correct
	achieved := wrong <= 2
	score := 0
	if achieved {
		score = 80
	}
	return Result{
		Mode:        2,
		Score:       score,
		Description: "Only 2 teams with wrong positions",
		Achieved:    achieved,
		Details:     map[string]any{"wrongTeams": wrong},
	}
}

// Mode 3: at most 3 placements missing.
func (e *Engine) checkMode3(userGroups, correctGroups Groups) Result {
	correct, total := countPlacements(userGroups, correctGroups)
	wrong := total - correct
	achieved := wrong <= 3
	score := 0
	if achieved {
		score = 60
	}
	return Result{
		Mode:        3,
		Score:       score,
		Description: "Only 3 teams with wrong positions",
		Achieved:    achieved,
		Details:     map[string]any{"wrongTeams": wrong},
	}
}

// Mode 4: the home team's group is fully correct in the user's draw.
func (e *Engine) checkMode4(userGroups, correctGroups Groups) Result {
	homeGroup := ""
	for _, label := range GroupLabels {
		if containsTeam(correctGroups.Teams(label), e.homeTeamID) {
			homeGroup = label
			break
		}
	}
	if homeGroup == "" {
		return Result{
			Mode:        4,
			Score:       0,
			Description: "All group mates of the home team",
			Achieved:    false,
			Details:     map[string]any{"homeGroup": nil},
		}
	}

	correctTeams := correctGroups.Teams(homeGroup)
	userTeams := userGroups.Teams(homeGroup)
	achieved := true
	for _, teamID := range correctTeams {
		if !containsTeam(userTeams, teamID) {
			achieved = false
			break
		}
	}

	score := 0
	if achieved {
		score = 50
	}
	return Result{
		Mode:        4,
		Score:       score,
		Description: "All group mates of the home team",
		Achieved:    achieved,
		Details: map[string]any{
			"homeGroup":    homeGroup,
			"correctTeams": correctTeams,
			"userTeams":    userTeams,
		},
	}
}

// Mode 5: at least one group fully correct. The first qualifying label in
// enumeration order is the one reported.
func (e *Engine) checkMode5(userGroups, correctGroups Groups) Result {
	for _, label := range GroupLabels {
		correctTeams := correctGroups.Teams(label)
		userTeams := userGroups.Teams(label)
		if len(correctTeams) != TeamsPerGroup || len(userTeams) < TeamsPerGroup {
			continue
		}
		allCorrect := true
		for _, teamID := range correctTeams {
			if !containsTeam(userTeams, teamID) {
				allCorrect = false
				break
			}
		}
		if allCorrect {
			return Result{
				Mode:        5,
				Score:       40,
				Description: "One complete group (4 teams) correct",
				Achieved:    true,
				Details:     map[string]any{"group": label, "correctTeams": correctTeams},
			}
		}
	}
	return Result{
		Mode:        5,
		Score:       0,
		Description: "One complete group (4 teams) correct",
		Achieved:    false,
		Details:     map[string]any{},
	}
}

// Mode 6: at least one group with 3 or more correct placements. First
// qualifying label in enumeration order wins.
func (e *Engine) checkMode6(userGroups, correctGroups Groups) Result {
	for _, label := range GroupLabels {
		userTeams := userGroups.Teams(label)
		correctCount := 0
		for _, teamID := range correctGroups.Teams(label) {
			if containsTeam(userTeams, teamID) {
				correctCount++
			}
		}
		if correctCount >= 3 {
			return Result{
				Mode:        6,
				Score:       20,
				Description: "3 teams from one group correct",
				Achieved:    true,
				Details:     map[string]any{"group": label, "correctCount": correctCount},
			}
		}
	}
	return Result{
		Mode:        6,
		Score:       0,
		Description: "3 teams from one group correct",
		Achieved:    false,
		Details:     map[string]any{},
	}
}
