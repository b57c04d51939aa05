package session

import "errors"

var (
	// ErrNoDraft is returned when an action arrives before any draft state
	// has been loaded into the session.
	ErrNoDraft = errors.New("no draft loaded")

	// ErrDraftNotActive is returned when a pick or nomination is attempted
	// while the draft is not in the ACTIVE state.
	ErrDraftNotActive = errors.New("draft is not active")

	// ErrTeamNotFound is returned when the acting team does not exist in the
	// session state.
	ErrTeamNotFound = errors.New("team not found")

	// ErrNotYourTurn is returned when a team picks while another team is on
	// the clock.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrInsufficientBudget is returned when a pick or bid costs more than
	// the team's remaining budget.
	ErrInsufficientBudget = errors.New("insufficient budget")

	// ErrPokemonTaken is returned when the requested Pokemon has already
	// been drafted.
	ErrPokemonTaken = errors.New("pokemon already drafted")

	// ErrRosterFull is returned when the team has already reached its
	// roster cap.
	ErrRosterFull = errors.New("roster is full")

	// ErrAuctionActive is returned when a nomination arrives while another
	// auction is still live.
	ErrAuctionActive = errors.New("another auction is active")

	// ErrAuctionNotFound is returned when settling or cancelling an auction
	// the session does not know about.
	ErrAuctionNotFound = errors.New("auction not found")
)
