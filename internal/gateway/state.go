package gateway

import (
	"sort"
	"time"

	"github.com/draftdex/draftdex/internal/models"
	"github.com/draftdex/draftdex/internal/session"
)

// StateView is the read model served to clients: the draft plus the derived
// values they would otherwise compute themselves.
type StateView struct {
	Draft         *models.Draft `json:"draft"`
	Teams         []TeamView    `json:"teams"`
	Picks         []models.Pick `json:"picks"`
	CurrentTeamID *string       `json:"current_team_id,omitempty"`
	Progress      float64       `json:"progress_pct"`
	Complete      bool          `json:"complete"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// TeamView augments a team with its derived spend and roster size.
type TeamView struct {
	models.Team
	BudgetUsed int           `json:"budget_used"`
	PickCount  int           `json:"pick_count"`
	Picks      []models.Pick `json:"picks"`
}

// BuildStateView assembles the client-facing view of one session.
func BuildStateView(sess *session.Session) StateView {
	sel := sess.Engine.Selectors()

	view := StateView{
		Draft:       sess.Store.Draft(),
		Progress:    sel.DraftProgress(),
		Complete:    sel.IsDraftComplete(),
		GeneratedAt: time.Now(),
	}

	for _, team := range sess.Store.Teams() {
		view.Teams = append(view.Teams, TeamView{
			Team:       team,
			BudgetUsed: sel.TeamBudgetUsed(team.ID),
			PickCount:  sel.TeamPickCount(team.ID),
			Picks:      sess.Store.PicksForTeam(team.ID),
		})
		view.Picks = append(view.Picks, sess.Store.PicksForTeam(team.ID)...)
	}
	sort.Slice(view.Picks, func(i, j int) bool {
		return view.Picks[i].PickOrder < view.Picks[j].PickOrder
	})

	if current := sel.CurrentTeam(); current != nil {
		id := current.ID.String()
		view.CurrentTeamID = &id
	}
	return view
}
