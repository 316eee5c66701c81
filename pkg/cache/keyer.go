package cache

// BuildKeyOpts holds the options that change a build result.
type BuildKeyOpts struct {
	Duplicates string `json:"duplicates"`
}

// ReportKeyOpts holds the options that change a validation report.
type ReportKeyOpts struct {
	MaxPathNodes int `json:"max_path_nodes"`
	TopN         int `json:"top_n"`
}

// RenderKeyOpts holds the options that change a rendered graph.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Layout string `json:"layout,omitempty"`
}

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// BuildKey keys a graph built from the input with the given hash.
	BuildKey(inputHash string, opts BuildKeyOpts) string

	// ReportKey keys the validation report of a graph.
	ReportKey(graphHash string, opts ReportKeyOpts) string

	// RenderKey keys a rendered image of a graph.
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// DefaultKeyer generates keys of the form "<stage>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) BuildKey(inputHash string, opts BuildKeyOpts) string {
	return stageKey("build", inputHash, opts)
}

func (DefaultKeyer) ReportKey(graphHash string, opts ReportKeyOpts) string {
	return stageKey("report", graphHash, opts)
}

func (DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return stageKey("render", graphHash, opts)
}
