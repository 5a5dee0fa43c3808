package validation

import (
	"github.com/gclaussn/go-procdoc/graph"
	"github.com/gclaussn/go-procdoc/model"
)

const maxDecisionOutgoing = 4

// checkFlow reports unreachable elements, dead ends and decisions or gateways, which are not wired properly.
func checkFlow(d *model.Document, r *Result) {
	if d.ElementCount() >= 2 && d.ConnectionCount() == 0 {
		r.addWarning(CategoryNoConnections, "", "document has %d elements, but no connections", d.ElementCount()).
			Suggestion = "connect the elements to describe the process flow"
	}

	g := graph.New(d)

	if len(g.StartSeeds()) == 0 {
		r.addWarning(CategoryNoStart, "", "document has no start element").
			Suggestion = "add a start element or an element without incoming connections"
	} else {
		for _, id := range g.Unreachable() {
			r.addError(CategoryUnreachable, id, "element %s is not reachable from a start element", elementName(d, id)).
				Suggestion = "connect the element with a preceding element"
		}
	}

	if len(g.EndSeeds()) == 0 {
		r.addWarning(CategoryNoEnd, "", "document has no end element").
			Suggestion = "add an end element or an element without outgoing connections"
	} else {
		for _, id := range g.DeadEnds() {
			r.addWarning(CategoryDeadEnd, id, "element %s does not lead to an end element", elementName(d, id)).
				Suggestion = "connect the element, directly or indirectly, with an end element"
		}
	}

	for _, e := range d.Elements() {
		switch e.Type {
		case model.ElementDecision:
			outgoing := d.OutgoingCount(e.Id)
			if outgoing < 2 {
				r.addWarning(CategoryDecision, e.Id, "decision %s has %d outgoing connections, but at least 2 are expected", displayName(e), outgoing).
					Suggestion = "add an outgoing connection for each outcome"
			} else if outgoing > maxDecisionOutgoing {
				r.addInfo(CategoryDecision, e.Id, "decision %s has %d outgoing connections", displayName(e), outgoing).
					Suggestion = "consider splitting the decision into several decisions"
			}
		case model.ElementGateway:
			if d.IncomingCount(e.Id) == 0 {
				r.addError(CategoryGateway, e.Id, "gateway %s has no incoming connections", displayName(e))
			}
			if d.OutgoingCount(e.Id) == 0 {
				r.addError(CategoryGateway, e.Id, "gateway %s has no outgoing connections", displayName(e))
			}
		}
	}
}
