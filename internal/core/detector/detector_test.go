package detector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melih/dockgen/internal/core/domain"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestDetectPrimaryType(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     domain.PrimaryType
	}{
		{"next wins over react", `{"dependencies":{"next":"14.0.0","react":"18.2.0"}}`, domain.TypeNextJS},
		{"angular", `{"dependencies":{"@angular/core":"17.0.0","rxjs":"7"}}`, domain.TypeAngular},
		{"angular wins over vue", `{"dependencies":{"@angular/core":"17.0.0","vue":"3"}}`, domain.TypeAngular},
		{"vue", `{"dependencies":{"vue":"3.4.0"},"devDependencies":{"vite":"5"}}`, domain.TypeVue},
		{"react with vite dev dependency", `{"dependencies":{"react":"18"},"devDependencies":{"vite":"5"}}`, domain.TypeReactVite},
		{"react without vite", `{"dependencies":{"react":"18","react-scripts":"5"}}`, domain.TypeReact},
		{"nestjs", `{"dependencies":{"@nestjs/core":"10"}}`, domain.TypeNestJS},
		{"express is a plain node service", `{"dependencies":{"express":"4"}}`, domain.TypeNode},
		{"empty manifest", `{}`, domain.TypeNode},
		{"invalid manifest", `{"dependencies":`, domain.TypeNode},
		{"dependencies of the wrong shape", `{"dependencies":["next"]}`, domain.TypeNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeRepo(t, map[string]string{ManifestFile: tt.manifest})
			assert.Equal(t, tt.want, Detect(dir).PrimaryType)
		})
	}
}

func TestDetectPackageManager(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  domain.PackageManager
	}{
		{"no lockfile", nil, domain.NPM},
		{"npm lockfile", []string{"package-lock.json"}, domain.NPM},
		{"yarn", []string{"yarn.lock"}, domain.Yarn},
		{"bun", []string{"bun.lockb"}, domain.Bun},
		{"bun text lockfile", []string{"bun.lock"}, domain.Bun},
		{"pnpm beats yarn", []string{"yarn.lock", "pnpm-lock.yaml"}, domain.PNPM},
		{"yarn beats bun", []string{"bun.lockb", "yarn.lock"}, domain.Yarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := map[string]string{ManifestFile: `{}`}
			for _, f := range tt.files {
				files[f] = ""
			}
			assert.Equal(t, tt.want, Detect(writeRepo(t, files)).PackageManager)
		})
	}
}

func TestDetectScripts(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		ManifestFile: `{"scripts":{"build":"tsc","test":"jest"}}`,
	})

	profile := Detect(dir)
	assert.True(t, profile.HasBuildScript)
	assert.False(t, profile.HasStartScript)
	assert.Contains(t, profile.Manifest, "scripts")
}

func TestDetectNextWithoutLockfile(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		ManifestFile: `{"dependencies":{"next":"14.1.0","react":"18.2.0"},"scripts":{"build":"next build","start":"next start"}}`,
	})

	profile := Detect(dir)
	assert.Equal(t, domain.TypeNextJS, profile.PrimaryType)
	assert.Equal(t, domain.NPM, profile.PackageManager)
	assert.True(t, profile.HasBuildScript)
	assert.True(t, profile.HasStartScript)
}

func TestDetectVueWithPnpm(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		ManifestFile:     `{"dependencies":{"vue":"3.4.0"}}`,
		"pnpm-lock.yaml": "lockfileVersion: '6.0'\n",
	})

	profile := Detect(dir)
	assert.Equal(t, domain.TypeVue, profile.PrimaryType)
	assert.Equal(t, domain.PNPM, profile.PackageManager)
}

func TestDetectWithoutManifest(t *testing.T) {
	profile := Detect(t.TempDir())
	assert.Equal(t, domain.DefaultStackProfile(), profile)
}

func TestDetectMissingDirectory(t *testing.T) {
	profile := Detect(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Equal(t, domain.TypeNode, profile.PrimaryType)
	assert.Equal(t, domain.NPM, profile.PackageManager)
}
