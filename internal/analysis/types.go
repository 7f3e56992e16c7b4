package analysis

// Request is the payload posted to the analysis endpoint.
type Request struct {
	Scenario    string   `json:"scenario" yaml:"scenario"`
	Constraints []string `json:"constraints" yaml:"constraints"`
}

// Response captures the structured analysis returned by the backend. The shape
// is trusted as-is; absent list fields decode as nil and render nothing.
type Response struct {
	ScenarioSummary      string   `json:"scenarioSummary" yaml:"scenarioSummary"`
	PotentialPitfalls    []string `json:"potentialPitfalls,omitempty" yaml:"potentialPitfalls,omitempty"`
	ProposedStrategies   []string `json:"proposedStrategies,omitempty" yaml:"proposedStrategies,omitempty"`
	RecommendedResources []string `json:"recommendedResources,omitempty" yaml:"recommendedResources,omitempty"`
	Disclaimer           string   `json:"disclaimer" yaml:"disclaimer"`
}

// Section is one titled list of a response.
type Section struct {
	Title string
	Items []string
}

const (
	TitleSummary    = "Scenario Summary"
	TitlePitfalls   = "Potential Pitfalls"
	TitleStrategies = "Proposed Strategies"
	TitleResources  = "Recommended Resources"
	TitleDisclaimer = "Disclaimer"
)

// Sections returns the list sections in display order, skipping empty ones.
func (r Response) Sections() []Section {
	candidates := []Section{
		{Title: TitlePitfalls, Items: r.PotentialPitfalls},
		{Title: TitleStrategies, Items: r.ProposedStrategies},
		{Title: TitleResources, Items: r.RecommendedResources},
	}
	out := make([]Section, 0, len(candidates))
	for _, section := range candidates {
		if len(section.Items) == 0 {
			continue
		}
		out = append(out, section)
	}
	return out
}
