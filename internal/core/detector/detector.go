// Package detector infers the technology stack of a checked-out repository.
package detector

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/melih/dockgen/internal/core/domain"
)

// ManifestFile is the manifest the detector reads from the repository root.
const ManifestFile = "package.json"

// Lockfiles in the order they are checked. The first one present wins.
var lockfiles = []struct {
	names   []string
	manager domain.PackageManager
}{
	{[]string{"pnpm-lock.yaml"}, domain.PNPM},
	{[]string{"yarn.lock"}, domain.Yarn},
	{[]string{"bun.lockb", "bun.lock"}, domain.Bun},
}

// Detect inspects dir and returns its stack profile. It never fails: anything
// unreadable is treated as absent.
func Detect(dir string) domain.StackProfile {
	profile := domain.DefaultStackProfile()

	manifest := readManifest(filepath.Join(dir, ManifestFile))
	profile.Manifest = manifest

	deps := dependencies(manifest)
	profile.PrimaryType = primaryType(deps)
	profile.PackageManager = packageManager(dir)

	scripts := table(manifest, "scripts")
	_, profile.HasBuildScript = scripts["build"]
	_, profile.HasStartScript = scripts["start"]

	return profile
}

func primaryType(deps map[string]struct{}) domain.PrimaryType {
	has := func(name string) bool {
		_, ok := deps[name]
		return ok
	}

	switch {
	case has("next"):
		return domain.TypeNextJS
	case has("@angular/core"):
		return domain.TypeAngular
	case has("vue"):
		return domain.TypeVue
	case has("react"):
		if has("vite") {
			return domain.TypeReactVite
		}
		return domain.TypeReact
	case has("@nestjs/core"):
		return domain.TypeNestJS
	default:
		return domain.TypeNode
	}
}

func packageManager(dir string) domain.PackageManager {
	for _, lock := range lockfiles {
		for _, name := range lock.names {
			if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
				return lock.manager
			}
		}
	}
	return domain.NPM
}

func readManifest(path string) map[string]any {
	raw, err := os.ReadFile(path)
	if err != nil {
		return map[string]any{}
	}
	manifest := map[string]any{}
	if err := json.Unmarshal(raw, &manifest); err != nil || manifest == nil {
		return map[string]any{}
	}
	return manifest
}

// dependencies merges runtime and development dependencies into one set.
func dependencies(manifest map[string]any) map[string]struct{} {
	deps := map[string]struct{}{}
	for _, key := range []string{"dependencies", "devDependencies"} {
		for name := range table(manifest, key) {
			deps[name] = struct{}{}
		}
	}
	return deps
}

func table(manifest map[string]any, key string) map[string]any {
	if t, ok := manifest[key].(map[string]any); ok {
		return t
	}
	return map[string]any{}
}
