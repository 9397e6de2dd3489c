package domain

// RecipeFileName is the file the image build tool reads from the context root.
const RecipeFileName = "Dockerfile"

// Provenance records where a recipe candidate came from.
type Provenance string

const (
	ProvenanceModel    Provenance = "model-generated"
	ProvenanceTemplate Provenance = "template-generated"
)

// RecipeCandidate is a Dockerfile text together with its origin.
// Transformations return a new candidate instead of changing this one.
type RecipeCandidate struct {
	Content    string     `json:"content"`
	Provenance Provenance `json:"provenance"`
}

// WithContent returns a copy of the candidate carrying new content.
func (c RecipeCandidate) WithContent(content string) RecipeCandidate {
	return RecipeCandidate{Content: content, Provenance: c.Provenance}
}

// FileExcerpt is a bounded slice of a repository file handed to the model.
type FileExcerpt struct {
	Path    string
	Content string
}
