package http

import (
	"net/url"
	"sort"
	"strings"

	"github.com/distribution/reference"
	"github.com/go-git/go-git/v5/plumbing"
	giturl "github.com/kubescape/go-git-url"

	"github.com/melih/dockgen/internal/core/domain"
)

const minRecipeLength = 10

// ValidationError lists every rejected field of a request body.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

type validator struct {
	fields map[string]string
}

func (v *validator) fail(field, reason string) {
	if v.fields == nil {
		v.fields = map[string]string{}
	}
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = reason
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func (v *validator) repoURL(raw string) {
	u, err := url.Parse(strings.TrimSpace(raw))
	switch {
	case raw == "":
		v.fail("repoUrl", "is required")
	case err != nil || !u.IsAbs() || u.Host == "":
		v.fail("repoUrl", "must be an absolute URL")
	case u.Scheme != "http" && u.Scheme != "https":
		v.fail("repoUrl", "must use http or https")
	}
}

func (v *validator) accessToken(token string) {
	if strings.TrimSpace(token) == "" {
		v.fail("accessToken", "is required")
	}
}

// ValidateGenerate checks a generate-and-build request.
func ValidateGenerate(req domain.GenerateRequest) error {
	var v validator
	v.repoURL(req.RepoURL)
	v.accessToken(req.AccessToken)
	if name := strings.TrimSpace(req.ImageName); name != "" {
		if _, err := reference.ParseNormalizedNamed(name); err != nil {
			v.fail("imageName", err.Error())
		}
	}
	return v.err()
}

// ValidatePush checks a push request.
func ValidatePush(req domain.PushRequest) error {
	var v validator
	v.repoURL(req.RepoURL)
	if _, ok := v.fields["repoUrl"]; !ok {
		if _, err := giturl.NewGitURL(strings.TrimSpace(req.RepoURL)); err != nil {
			v.fail("repoUrl", "unsupported repository host")
		}
	}
	v.accessToken(req.AccessToken)
	if len(strings.TrimSpace(req.RecipeText)) < minRecipeLength {
		v.fail("recipeText", "must be at least 10 characters")
	}
	if branch := strings.TrimSpace(req.BranchName); branch != "" {
		if err := plumbing.NewBranchReferenceName(branch).Validate(); err != nil {
			v.fail("branchName", "is not a valid branch name")
		}
	}
	return v.err()
}
