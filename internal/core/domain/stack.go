package domain

// PrimaryType identifies the framework a repository is built around.
type PrimaryType string

const (
	TypeNode      PrimaryType = "node"
	TypeNextJS    PrimaryType = "nextjs"
	TypeReact     PrimaryType = "react"
	TypeReactVite PrimaryType = "react-vite"
	TypeVue       PrimaryType = "vue"
	TypeAngular   PrimaryType = "angular"
	TypeNestJS    PrimaryType = "nestjs"
)

// PrimaryTypes returns every known PrimaryType.
func PrimaryTypes() []PrimaryType {
	return []PrimaryType{TypeNode, TypeNextJS, TypeReact, TypeReactVite, TypeVue, TypeAngular, TypeNestJS}
}

func (t PrimaryType) Valid() bool {
	for _, known := range PrimaryTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// PackageManager is the JavaScript package manager a repository uses.
type PackageManager string

const (
	NPM  PackageManager = "npm"
	Yarn PackageManager = "yarn"
	PNPM PackageManager = "pnpm"
	Bun  PackageManager = "bun"
)

// PackageManagers returns every known PackageManager.
func PackageManagers() []PackageManager {
	return []PackageManager{NPM, Yarn, PNPM, Bun}
}

func (m PackageManager) Valid() bool {
	for _, known := range PackageManagers() {
		if m == known {
			return true
		}
	}
	return false
}

// StackProfile is the result of inspecting a checked-out repository.
// It is treated as immutable once detected.
type StackProfile struct {
	PrimaryType    PrimaryType    `json:"primaryType" yaml:"primaryType"`
	PackageManager PackageManager `json:"packageManager" yaml:"packageManager"`
	HasBuildScript bool           `json:"hasBuildScript" yaml:"hasBuildScript"`
	HasStartScript bool           `json:"hasStartScript" yaml:"hasStartScript"`
	Manifest       map[string]any `json:"manifest,omitempty" yaml:"-"` // raw package.json
}

// DefaultStackProfile is the profile of a repository with nothing recognizable in it.
func DefaultStackProfile() StackProfile {
	return StackProfile{
		PrimaryType:    TypeNode,
		PackageManager: NPM,
		Manifest:       map[string]any{},
	}
}
