package tutor

import (
	"context"
	"errors"
	"testing"
)

func TestDecideRouteSetsExactlyOneRoute(t *testing.T) {
	for _, route := range Routes() {
		t.Run(route.String(), func(t *testing.T) {
			decider := &stubDecider{decision: Decision{Route: route, CallID: "c"}}
			engine := newTestEngine(decider, &stubTools{}, &stubDialogue{})

			st := NewState("t", "", DifficultyBeginner)
			decision := engine.decideRoute(context.Background(), st)

			if decision.Route != route {
				t.Fatalf("decision route = %s, want %s", decision.Route, route)
			}
			if st.NextNode != route {
				t.Fatalf("next_node = %s, want %s", st.NextNode, route)
			}
			if !validRoute(st.NextNode) {
				t.Fatalf("next_node %v is not a valid route", st.NextNode)
			}
		})
	}
}

func TestDecideRouteErrorDefaultsToDialogue(t *testing.T) {
	decider := &stubDecider{err: errors.New("no function call in response")}
	engine := newTestEngine(decider, &stubTools{}, &stubDialogue{})

	st := NewState("t", "", DifficultyBeginner)
	decision := engine.decideRoute(context.Background(), st)

	if decision.Route != RouteDialogue {
		t.Fatalf("route = %s, want continue_dialogue", decision.Route)
	}
	if decision.Input != (ToolInput{}) {
		t.Fatalf("payload = %+v, want empty", decision.Input)
	}
	if decider.calls != 1 {
		t.Fatalf("decider called %d times, want exactly 1 (no retries)", decider.calls)
	}
}

func TestDecideRouteUnknownRouteDefaultsToDialogue(t *testing.T) {
	decider := &stubDecider{decision: Decision{Route: Route(42), Input: ToolInput{Code: "x"}}}
	engine := newTestEngine(decider, &stubTools{}, &stubDialogue{})

	st := NewState("t", "", DifficultyBeginner)
	decision := engine.decideRoute(context.Background(), st)

	if decision.Route != RouteDialogue {
		t.Fatalf("route = %s, want continue_dialogue", decision.Route)
	}
	if st.ToolInput != (ToolInput{}) {
		t.Fatalf("tool_input = %+v, want cleared", st.ToolInput)
	}
}

func TestDecideRouteGeneratesCallIDForToolRoutes(t *testing.T) {
	decider := &stubDecider{decision: Decision{Route: RouteExplainConcept, Input: ToolInput{Concept: "closures"}}}
	engine := newTestEngine(decider, &stubTools{}, &stubDialogue{})

	st := NewState("t", "", DifficultyBeginner)
	decision := engine.decideRoute(context.Background(), st)

	if decision.CallID == "" {
		t.Fatal("tool routes must carry a call id even when the capability supplied none")
	}
}

func TestDecideRouteBoundsHistory(t *testing.T) {
	decider := &recordingDecider{}
	engine := NewEngine(decider, &stubTools{}, &stubDialogue{}, WithHistoryWindow(4))

	st := NewState("t", "", DifficultyBeginner)
	for i := 0; i < 20; i++ {
		st.Append(Message{Role: RoleUser, Content: "m"})
	}

	engine.decideRoute(context.Background(), st)

	if len(decider.sawHistory) != 4 {
		t.Fatalf("decider saw %d messages, want window of 4", len(decider.sawHistory))
	}
}

type recordingDecider struct {
	sawHistory []Message
}

func (d *recordingDecider) Decide(ctx context.Context, history []Message, difficulty Difficulty, topic, subTopic string) (Decision, error) {
	d.sawHistory = history
	return Decision{Route: RouteDialogue}, nil
}
