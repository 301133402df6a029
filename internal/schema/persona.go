package schema

// Role is one entry in a persona's work history.
type Role struct {
	Title     string `json:"title,omitempty"`
	Company   string `json:"company,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// Education is one entry in a persona's education history.
type Education struct {
	School string `json:"school,omitempty"`
	Degree string `json:"degree,omitempty"`
	Field  string `json:"field,omitempty"`
	Years  string `json:"years,omitempty"`
}

// ContentAnalysis summarises what and how the person posts.
type ContentAnalysis struct {
	Topics        []string `json:"topics,omitempty"`
	Tone          string   `json:"tone,omitempty"`
	PostingHabits string   `json:"posting_habits,omitempty"`
}

// OnlinePresence collects the persona's known profile links.
type OnlinePresence struct {
	LinkedIn string   `json:"linkedin,omitempty"`
	X        string   `json:"x,omitempty"`
	Website  string   `json:"website,omitempty"`
	Other    []string `json:"other,omitempty"`
}

// PersonaDocument is the terminal artifact of a profile run.
//
// It is constructed exactly once, from the model's final answer, via
// ParsePersona. Every field is independently optional: downstream consumers
// must treat absence as "unsupported by evidence", never as an error.
type PersonaDocument struct {
	Name            string           `json:"name,omitempty"`
	Headline        string           `json:"headline,omitempty"`
	Summary         string           `json:"summary,omitempty"`
	Location        string           `json:"location,omitempty"`
	Roles           []Role           `json:"roles,omitempty"`
	Education       []Education      `json:"education,omitempty"`
	Skills          []string         `json:"skills,omitempty"`
	Personality     []string         `json:"personality,omitempty"`
	Worldview       string           `json:"worldview,omitempty"`
	ContentAnalysis *ContentAnalysis `json:"content_analysis,omitempty"`
	Network         []string         `json:"network,omitempty"`
	Timeline        []string         `json:"timeline,omitempty"`
	OnlinePresence  *OnlinePresence  `json:"online_presence,omitempty"`
	Sources         []string         `json:"sources,omitempty"`
	Uncertainties   []string         `json:"uncertainties,omitempty"`
}
