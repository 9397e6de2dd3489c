package pipeline

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/distribution/reference"
	giturl "github.com/kubescape/go-git-url"

	"github.com/melih/dockgen/internal/core/domain"
)

const fallbackImageName = "image"

var invalidNameChars = regexp.MustCompile(`[^a-z0-9]+`)

// imageTag returns the requested image name, or <repo-name>:dockgen-<unix-ms>.
func (s *Service) imageTag(req domain.GenerateRequest) string {
	if name := strings.TrimSpace(req.ImageName); name != "" {
		return name
	}

	tag := fmt.Sprintf("%s:dockgen-%d", RepoName(req.RepoURL), s.now().UnixMilli())
	if _, err := reference.ParseNormalizedNamed(tag); err != nil {
		return fmt.Sprintf("%s:dockgen-%d", fallbackImageName, s.now().UnixMilli())
	}
	return tag
}

// RepoName returns a lowercase, reference-safe name for the repository behind
// repoURL, falling back to "image".
func RepoName(repoURL string) string {
	name := ""
	if parsed, err := giturl.NewGitURL(repoURL); err == nil {
		name = parsed.GetRepoName()
	}
	if name == "" {
		name = path.Base(strings.TrimRight(repoURL, "/"))
	}
	name = strings.TrimSuffix(name, ".git")

	name = invalidNameChars.ReplaceAllString(strings.ToLower(name), "-")
	name = strings.Trim(name, "-")
	if name == "" || name == "." {
		return fallbackImageName
	}
	return name
}
