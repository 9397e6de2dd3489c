package domain

// GenerateRequest asks for a recipe to be generated and built for a repository.
type GenerateRequest struct {
	RepoURL     string `json:"repoUrl"`
	AccessToken string `json:"accessToken"`
	ImageName   string `json:"imageName,omitempty"`
}

// Stage names the pipeline step a failed request stopped at.
type Stage string

const (
	StageWorkspace Stage = "workspace"
	StageClone     Stage = "clone"
	StageBuild     Stage = "build"
)

// GenerateResult is what the caller sees once the pipeline finished.
type GenerateResult struct {
	Success    bool          `json:"success"`
	Detected   *StackProfile `json:"detected,omitempty"`
	RecipeText string        `json:"recipeText,omitempty"`
	ImageTag   string        `json:"imageTag,omitempty"`
	Logs       []string      `json:"logLines"`
	JobID      string        `json:"jobId"`
	Error      string        `json:"error,omitempty"`
	FailedAt   Stage         `json:"failedAt,omitempty"`
}

// PushRequest asks for a recipe to be committed on a new branch.
type PushRequest struct {
	RepoURL       string `json:"repoUrl"`
	AccessToken   string `json:"accessToken"`
	RecipeText    string `json:"recipeText"`
	BranchName    string `json:"branchName,omitempty"`
	CommitMessage string `json:"commitMessage,omitempty"`
}

type PushResult struct {
	Success bool   `json:"success"`
	Branch  string `json:"branch,omitempty"`
	Error   string `json:"error,omitempty"`
}
