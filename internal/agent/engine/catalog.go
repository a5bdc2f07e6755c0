package engine

// Stage identifiers of the job lifecycle, totally ordered from assignment to
// completion.
const (
	StageAssigned     = 1
	StageOnTheWay     = 2
	StageOnPickupSite = 3
	StageLoaded       = 4
	StageOnDropSite   = 5
	StageDelivered    = 6
	StageCompleted    = 7
)

type stageInfo struct {
	Label string
	Color string
}

var stageCatalog = map[int]stageInfo{
	StageAssigned:     {Label: "Job Assigned", Color: "#0b6eaa"},
	StageOnTheWay:     {Label: "On the Way", Color: "#f59e0b"},
	StageOnPickupSite: {Label: "On Pickup Site", Color: "#8b5cf6"},
	StageLoaded:       {Label: "Loaded", Color: "#10b981"},
	StageOnDropSite:   {Label: "On Drop Site", Color: "#3b82f6"},
	StageDelivered:    {Label: "Delivered", Color: "#ef4444"},
	StageCompleted:    {Label: "Job Complete", Color: "#64748b"},
}

// display-layer leniency: unknown ids render neutrally instead of failing
var unknownStage = stageInfo{Label: "Unknown", Color: "#6b7280"}

// StageLabel returns the display label for a stage id.
func StageLabel(stageID int) string {
	if info, ok := stageCatalog[stageID]; ok {
		return info.Label
	}
	return unknownStage.Label
}

// StageColor returns the display color for a stage id.
func StageColor(stageID int) string {
	if info, ok := stageCatalog[stageID]; ok {
		return info.Color
	}
	return unknownStage.Color
}
