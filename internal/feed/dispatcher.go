package feed

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/draftdex/draftdex/internal/models"
	"github.com/draftdex/draftdex/internal/session"
	"github.com/draftdex/draftdex/internal/store"
)

// Dispatcher routes decoded envelopes into the session a room code maps to.
// Decode failures degrade per envelope: a malformed update for one
// collection is logged and skipped without disturbing the rest of the
// session state.
type Dispatcher struct {
	sessions *session.Manager

	// onChange, when set, fires after every successfully applied envelope.
	// The gateway hangs its fan-out here.
	onChange func(roomCode string, env Envelope)

	// onDraftDeleted fires when a deletion envelope arrives, after the
	// session has been marked deleted and closed.
	onDraftDeleted func(roomCode string)
}

// NewDispatcher returns a dispatcher over the given session registry.
func NewDispatcher(sessions *session.Manager) *Dispatcher {
	return &Dispatcher{sessions: sessions}
}

// OnChange registers the post-apply hook.
func (d *Dispatcher) OnChange(fn func(roomCode string, env Envelope)) {
	d.onChange = fn
}

// OnDraftDeleted registers the deletion hook.
func (d *Dispatcher) OnDraftDeleted(fn func(roomCode string)) {
	d.onDraftDeleted = fn
}

// Dispatch applies one envelope. It returns an error only for malformed
// envelopes the caller should not retry against; applied and skipped
// envelopes both return nil.
func (d *Dispatcher) Dispatch(env Envelope) error {
	if env.RoomCode == "" {
		return fmt.Errorf("envelope %s: missing room code", env.ID)
	}

	if env.Kind == EventKindDraftDeleted {
		d.handleDraftDeleted(env.RoomCode)
		return nil
	}

	sess := d.sessions.GetOrCreate(env.RoomCode)
	if err := d.apply(sess.Store, env); err != nil {
		return err
	}

	if d.onChange != nil {
		d.onChange(env.RoomCode, env)
	}
	return nil
}

func (d *Dispatcher) apply(st *store.Store, env Envelope) error {
	switch env.Kind {
	case EventKindDraft:
		var draft models.Draft
		if err := json.Unmarshal(env.Data, &draft); err != nil {
			return fmt.Errorf("decode draft update: %w", err)
		}
		st.SetDraft(draft)

	case EventKindTeams:
		var teams []models.Team
		if err := json.Unmarshal(env.Data, &teams); err != nil {
			return fmt.Errorf("decode teams update: %w", err)
		}
		st.SetTeams(teams)

	case EventKindParticipants:
		var participants []models.Participant
		if err := json.Unmarshal(env.Data, &participants); err != nil {
			return fmt.Errorf("decode participants update: %w", err)
		}
		st.SetParticipants(participants)

	case EventKindPicks:
		var picks []models.Pick
		if err := json.Unmarshal(env.Data, &picks); err != nil {
			return fmt.Errorf("decode picks update: %w", err)
		}
		st.SetPicks(picks)

	case EventKindAuctions:
		var auctions []models.Auction
		if err := json.Unmarshal(env.Data, &auctions); err != nil {
			return fmt.Errorf("decode auctions update: %w", err)
		}
		st.SetAuctions(auctions)

	case EventKindWishlist:
		var items []models.WishlistItem
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return fmt.Errorf("decode wishlist update: %w", err)
		}
		st.SetWishlistItems(items)

	case EventKindTiers:
		var tiers []models.PokemonTier
		if err := json.Unmarshal(env.Data, &tiers); err != nil {
			return fmt.Errorf("decode tiers update: %w", err)
		}
		st.SetPokemonTiers(tiers)

	case EventKindSnapshot:
		var snap store.Snapshot
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		st.ApplySnapshot(snap)

	default:
		log.Warn().
			Str("kind", string(env.Kind)).
			Str("event_id", env.ID.String()).
			Msg("unknown feed event kind; skipped")
	}
	return nil
}

func (d *Dispatcher) handleDraftDeleted(roomCode string) {
	if sess, ok := d.sessions.Get(roomCode); ok {
		sess.Store.SetDraftStatus(models.DraftStatusDeleted)
	}
	d.sessions.Close(roomCode)
	if d.onDraftDeleted != nil {
		d.onDraftDeleted(roomCode)
	}
	log.Info().Str("room_code", roomCode).Msg("draft deleted; session torn down")
}
