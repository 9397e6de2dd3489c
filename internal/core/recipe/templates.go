package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"

	"github.com/melih/dockgen/internal/core/domain"
)

const (
	bunImage   = "oven/bun:1"
	nginxImage = "nginx:alpine"
	serverPort = 3000
)

var nginxStage = strings.TrimSpace(heredoc.Doc(`
	FROM `+nginxImage+` AS runtime
	COPY --from=build /app/out /usr/share/nginx/html
	EXPOSE 80
	CMD ["nginx", "-g", "daemon off;"]
`)) + "\n"

// Templates renders deterministic Dockerfiles keyed by stack profile.
type Templates struct {
	nodeImage string
}

// NewTemplates creates a template generator building on node:<nodeVersion>.
func NewTemplates(nodeVersion string) *Templates {
	return &Templates{nodeImage: "node:" + nodeVersion}
}

// Render always returns a usable candidate. Unknown types get the generic
// node service template.
func (t *Templates) Render(profile domain.StackProfile) domain.RecipeCandidate {
	tc := t.toolchain(profile.PackageManager)

	var content string
	switch profile.PrimaryType {
	case domain.TypeNextJS:
		content = t.nextJS(profile, tc)
	case domain.TypeReact, domain.TypeReactVite, domain.TypeVue, domain.TypeAngular:
		content = t.static(profile, tc)
	case domain.TypeNestJS:
		content = t.nestJS(profile, tc)
	case domain.TypeNode:
		content = t.node(profile, tc)
	default:
		content = t.node(profile, tc)
	}

	return domain.RecipeCandidate{Content: content, Provenance: domain.ProvenanceTemplate}
}

type toolchain struct {
	image        string
	install      string
	runtimeSetup string
	prune        string
	runScript    func(script string) string
	exec         []string
	start        []string
}

func (t *Templates) toolchain(pm domain.PackageManager) toolchain {
	switch pm {
	case domain.Yarn:
		return toolchain{
			image:     t.nodeImage,
			install:   "yarn install --frozen-lockfile",
			runScript: func(s string) string { return "yarn " + s },
			exec:      []string{"npx"},
			start:     []string{"yarn", "start"},
		}
	case domain.PNPM:
		return toolchain{
			image:        t.nodeImage,
			install:      "corepack enable && pnpm install --frozen-lockfile",
			runtimeSetup: "corepack enable",
			prune:        "pnpm prune --prod",
			runScript:    func(s string) string { return "pnpm run " + s },
			exec:         []string{"pnpm", "exec"},
			start:        []string{"pnpm", "start"},
		}
	case domain.Bun:
		return toolchain{
			image:     bunImage,
			install:   "bun install --frozen-lockfile",
			runScript: func(s string) string { return "bun run " + s },
			exec:      []string{"bunx"},
			start:     []string{"bun", "run", "start"},
		}
	case domain.NPM:
		fallthrough
	default:
		return toolchain{
			image:     t.nodeImage,
			install:   "if [ -f package-lock.json ]; then npm ci; else npm install; fi",
			prune:     "npm prune --omit=dev",
			runScript: func(s string) string { return "npm run " + s },
			exec:      []string{"npx"},
			start:     []string{"npm", "start"},
		}
	}
}

// buildCommand prefers the repository's own build script and otherwise calls
// the framework CLI directly.
func (tc toolchain) buildCommand(profile domain.StackProfile, fallback string) string {
	if profile.HasBuildScript {
		return tc.runScript("build")
	}
	return strings.Join(append(append([]string{}, tc.exec...), fallback), " ")
}

func (tc toolchain) execArgs(args ...string) []string {
	return append(append([]string{}, tc.exec...), args...)
}

func (t *Templates) buildStage(tc toolchain, steps ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s AS build\n", tc.image)
	b.WriteString("WORKDIR /app\n")
	b.WriteString("COPY . .\n")
	fmt.Fprintf(&b, "RUN %s\n", tc.install)
	for _, step := range steps {
		fmt.Fprintf(&b, "%s\n", step)
	}
	return b.String()
}

func (t *Templates) serverStage(tc toolchain, prune bool, cmd []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s AS runtime\n", tc.image)
	b.WriteString("WORKDIR /app\n")
	b.WriteString("ENV NODE_ENV=production\n")
	fmt.Fprintf(&b, "ENV PORT=%d\n", serverPort)
	b.WriteString("COPY --from=build /app ./\n")
	if tc.runtimeSetup != "" {
		fmt.Fprintf(&b, "RUN %s\n", tc.runtimeSetup)
	}
	if prune && tc.prune != "" {
		fmt.Fprintf(&b, "RUN %s\n", tc.prune)
	}
	fmt.Fprintf(&b, "EXPOSE %d\n", serverPort)
	fmt.Fprintf(&b, "CMD %s\n", execForm(cmd))
	return b.String()
}

func (t *Templates) node(profile domain.StackProfile, tc toolchain) string {
	var steps []string
	if profile.HasBuildScript {
		steps = append(steps, "RUN "+tc.runScript("build"))
	}

	cmd := tc.start
	if !profile.HasStartScript {
		cmd = []string{runtimeBinary(tc), "index.js"}
	}

	return t.buildStage(tc, steps...) + "\n" + t.serverStage(tc, true, cmd)
}

func (t *Templates) nestJS(profile domain.StackProfile, tc toolchain) string {
	build := t.buildStage(tc, "RUN "+tc.buildCommand(profile, "nest build"))
	return build + "\n" + t.serverStage(tc, true, []string{runtimeBinary(tc), "dist/main.js"})
}

func (t *Templates) nextJS(profile domain.StackProfile, tc toolchain) string {
	build := t.buildStage(tc,
		"ENV NEXT_TELEMETRY_DISABLED=1",
		"RUN "+tc.buildCommand(profile, "next build"),
	)

	cmd := tc.start
	if !profile.HasStartScript {
		cmd = tc.execArgs("next", "start", "-p", strconv.Itoa(serverPort))
	}
	return build + "\n" + t.serverStage(tc, false, cmd)
}

func (t *Templates) static(profile domain.StackProfile, tc toolchain) string {
	var fallback, collect string
	switch profile.PrimaryType {
	case domain.TypeReact:
		fallback, collect = "react-scripts build", "RUN mv build /app/out"
	case domain.TypeAngular:
		// Angular nests the bundle below dist/<project>[/browser].
		fallback = "ng build"
		collect = `RUN cp -r "$(dirname "$(find dist -name index.html | head -n 1)")" /app/out`
	case domain.TypeReactVite, domain.TypeVue:
		fallback, collect = "vite build", "RUN mv dist /app/out"
	default:
		fallback, collect = "vite build", "RUN mv dist /app/out"
	}

	build := t.buildStage(tc, "RUN "+tc.buildCommand(profile, fallback), collect)
	return build + "\n" + nginxStage
}

func runtimeBinary(tc toolchain) string {
	if tc.image == bunImage {
		return "bun"
	}
	return "node"
}

func execForm(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = strconv.Quote(arg)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
