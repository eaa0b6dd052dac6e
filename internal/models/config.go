package models

// StatusMeta is display metadata for a status.
type StatusMeta struct {
	Label string
	Color string
}

// StatusConfig maps each status to its display metadata.
var StatusConfig = map[Status]StatusMeta{
	StatusBacklog:    {Label: "Backlog", Color: "zinc"},
	StatusTodo:       {Label: "Todo", Color: "zinc"},
	StatusInProgress: {Label: "In Progress", Color: "yellow"},
	StatusInReview:   {Label: "In Review", Color: "blue"},
	StatusDone:       {Label: "Done", Color: "green"},
	StatusCancelled:  {Label: "Cancelled", Color: "red"},
}

// PriorityMeta is display metadata for a priority.
type PriorityMeta struct {
	Label string
	Color string
	Icon  string
}

// PriorityConfig maps each priority to its display metadata.
var PriorityConfig = map[Priority]PriorityMeta{
	PriorityUrgent: {Label: "Urgent", Color: "red", Icon: "!!"},
	PriorityHigh:   {Label: "High", Color: "orange", Icon: "^3"},
	PriorityMedium: {Label: "Medium", Color: "yellow", Icon: "^2"},
	PriorityLow:    {Label: "Low", Color: "blue", Icon: "^1"},
	PriorityNone:   {Label: "No Priority", Color: "zinc", Icon: "--"},
}

// AvailableLabels is the fixed label vocabulary issues draw from.
// AI label suggestions are constrained to this set.
var AvailableLabels = []string{
	"bug", "feature", "improvement", "documentation", "design",
	"urgent", "low-priority", "backend", "frontend", "mobile",
	"api", "security", "performance",
}

// LabelColors maps each known label to its display color.
var LabelColors = map[string]string{
	"bug":           "red",
	"feature":       "purple",
	"improvement":   "blue",
	"documentation": "green",
	"design":        "pink",
	"urgent":        "red",
	"low-priority":  "zinc",
	"backend":       "amber",
	"frontend":      "cyan",
	"mobile":        "indigo",
	"api":           "orange",
	"security":      "rose",
	"performance":   "lime",
}
