package tutor

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// decideRoute runs the routing decision step for the current turn: it asks
// the decision capability for a route and records the outcome on state.
//
// A routing failure must never halt the conversation. Any error or
// unrecognized selection is logged and substituted with RouteDialogue and an
// empty payload, immediately and without retries.
func (e *Engine) decideRoute(ctx context.Context, st *State) Decision {
	history := Window(st.Messages, e.window)

	decision, err := e.decider.Decide(ctx, history, st.DifficultyLevel, st.Topic, st.SubTopic)
	if err != nil {
		log.Warn().Err(err).Msg("Routing decision failed, defaulting to dialogue")
		decision = Decision{Route: RouteDialogue}
	} else if !validRoute(decision.Route) {
		log.Warn().
			Str("route", decision.Route.String()).
			Msg("Routing decision named an unrecognized route, defaulting to dialogue")
		decision = Decision{Route: RouteDialogue}
	}

	if decision.Route != RouteDialogue && decision.CallID == "" {
		decision.CallID = uuid.NewString()
	}

	st.NextNode = decision.Route
	st.ToolInput = decision.Input

	log.Debug().
		Str("route", decision.Route.String()).
		Str("call_id", decision.CallID).
		Msg("Routing decision made")

	return decision
}

func validRoute(r Route) bool {
	_, ok := routeNames[r]
	return ok
}
