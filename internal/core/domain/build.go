package domain

// BuildSpec describes one invocation of the image build tool.
type BuildSpec struct {
	ContextDir string
	RecipePath string // absolute path of the written Dockerfile
	ImageTag   string
}

// BuildOutcome is produced once per build attempt.
type BuildOutcome struct {
	Succeeded bool     `json:"succeeded"`
	Logs      []string `json:"logLines"`
	ImageTag  string   `json:"imageTag"`
}
