// Package activity implements the two stake-based games a guild can run:
// weighted raffles and parimutuel predictions.
package activity

import (
	"time"

	"curator/models"

	"github.com/google/uuid"
)

// Activity is a tagged handle over the two variants. Callers switch on Kind
// and unwrap with Raffle or Prediction.
type Activity struct {
	kind       models.ActivityKind
	raffle     *Raffle
	prediction *Prediction
}

// OfRaffle wraps a raffle.
func OfRaffle(r *Raffle) Activity {
	if r == nil {
		invariant("OfRaffle", "nil raffle")
	}
	return Activity{kind: models.ActivityKindRaffle, raffle: r}
}

// OfPrediction wraps a prediction.
func OfPrediction(p *Prediction) Activity {
	if p == nil {
		invariant("OfPrediction", "nil prediction")
	}
	return Activity{kind: models.ActivityKindPrediction, prediction: p}
}

// Kind returns the variant tag. The zero Activity has an empty kind.
func (a Activity) Kind() models.ActivityKind { return a.kind }

// IsZero reports whether a wraps nothing.
func (a Activity) IsZero() bool { return a.kind == "" }

// Raffle unwraps the raffle variant.
func (a Activity) Raffle() (*Raffle, bool) { return a.raffle, a.kind == models.ActivityKindRaffle }

// Prediction unwraps the prediction variant.
func (a Activity) Prediction() (*Prediction, bool) {
	return a.prediction, a.kind == models.ActivityKindPrediction
}

func (a Activity) base() *round {
	switch a.kind {
	case models.ActivityKindRaffle:
		return &a.raffle.round
	case models.ActivityKindPrediction:
		return &a.prediction.round
	default:
		invariant("Activity", "empty activity handle")
		return nil
	}
}

// ID returns the activity's unique identifier.
func (a Activity) ID() uuid.UUID { return a.base().ID() }

// Title returns the activity's title.
func (a Activity) Title() string { return a.base().Title() }

// Running reports whether the activity is open.
func (a Activity) Running() bool { return a.base().Running() }

// StartedAt returns the creation time.
func (a Activity) StartedAt() time.Time { return a.base().StartedAt() }

// EndedAt returns the end time, or the zero time while running.
func (a Activity) EndedAt() time.Time { return a.base().EndedAt() }

// Participants returns the number of entrants.
func (a Activity) Participants() int {
	switch a.kind {
	case models.ActivityKindRaffle:
		return a.raffle.Participants()
	case models.ActivityKindPrediction:
		return a.prediction.Participants()
	default:
		invariant("Activity.Participants", "empty activity handle")
		return 0
	}
}

// Cancel resets and closes the activity. Reports whether it was running.
func (a Activity) Cancel() bool {
	switch a.kind {
	case models.ActivityKindRaffle:
		return a.raffle.Cancel()
	case models.ActivityKindPrediction:
		return a.prediction.Cancel()
	default:
		invariant("Activity.Cancel", "empty activity handle")
		return false
	}
}
