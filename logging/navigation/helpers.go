package navigation

import (
	"context"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/logging"
)

const (
	// EventGridBuilt is emitted once per map load after classification finishes.
	EventGridBuilt logging.EventType = "nav.grid_built"
	// EventObstacle is emitted when an entity footprint is added to or removed
	// from the grid.
	EventObstacle logging.EventType = "nav.obstacle"
	// EventBridgeSegment is emitted when a bridge segment changes passability.
	EventBridgeSegment logging.EventType = "nav.bridge_segment"
	// EventSearchCapped is emitted when a search aborts on the expansion or
	// reconstruction guard.
	EventSearchCapped logging.EventType = "nav.search_capped"
)

// GridBuiltPayload summarizes the classified grid.
type GridBuiltPayload struct {
	CellsX    int `json:"cellsX"`
	CellsY    int `json:"cellsY"`
	Water     int `json:"water"`
	Cliff     int `json:"cliff"`
	Pinched   int `json:"pinched"`
	Bridges   int `json:"bridges"`
	Obstacles int `json:"obstacles"`
}

// ObstaclePayload records an incremental footprint edit.
type ObstaclePayload struct {
	Action string `json:"action"`
	Cells  int    `json:"cells"`
}

// BridgeSegmentPayload records a passability toggle.
type BridgeSegmentPayload struct {
	Segment  int    `json:"segment"`
	Passable bool   `json:"passable"`
	Cause    string `json:"cause,omitempty"`
}

// SearchCappedPayload records which guard fired and how far the search got.
type SearchCappedPayload struct {
	Guard    string `json:"guard"`
	Expanded int    `json:"expanded"`
}

// GridBuilt publishes a grid construction summary.
func GridBuilt(ctx context.Context, pub logging.Publisher, subject logging.EntityRef, payload GridBuiltPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGridBuilt,
		Subject:  subject,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryTerrain,
		Payload:  payload,
	})
}

// Obstacle publishes an incremental obstacle edit.
func Obstacle(ctx context.Context, pub logging.Publisher, subject logging.EntityRef, payload ObstaclePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventObstacle,
		Subject:  subject,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryTerrain,
		Payload:  payload,
	})
}

// BridgeSegment publishes a segment passability change.
func BridgeSegment(ctx context.Context, pub logging.Publisher, subject logging.EntityRef, payload BridgeSegmentPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBridgeSegment,
		Subject:  subject,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBridge,
		Payload:  payload,
	})
}

// SearchCapped publishes a search guard trip.
func SearchCapped(ctx context.Context, pub logging.Publisher, subject logging.EntityRef, payload SearchCappedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSearchCapped,
		Subject:  subject,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySearch,
		Payload:  payload,
	})
}
