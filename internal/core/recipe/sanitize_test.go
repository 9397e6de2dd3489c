package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/melih/dockgen/internal/core/domain"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced with language label",
			in:   "```dockerfile\nFROM node:20-alpine\nRUN npm ci\n```",
			want: "FROM node:20-alpine\nRUN npm ci\n",
		},
		{
			name: "bare fences and surrounding blank lines",
			in:   "\n\n```\nFROM alpine\nCMD [\"sh\"]\n```\n\n",
			want: "FROM alpine\nCMD [\"sh\"]\n",
		},
		{
			name: "label line",
			in:   "Dockerfile:\nFROM alpine\nCMD [\"sh\"]",
			want: "FROM alpine\nCMD [\"sh\"]\n",
		},
		{
			name: "label line is case insensitive",
			in:   "  DOCKERFILE  \nFROM alpine",
			want: "FROM alpine\n",
		},
		{
			name: "windows line endings",
			in:   "FROM alpine\r\nRUN echo hi\r\n",
			want: "FROM alpine\nRUN echo hi\n",
		},
		{
			name: "already clean",
			in:   "FROM alpine\nRUN echo hi\n",
			want: "FROM alpine\nRUN echo hi\n",
		},
		{
			name: "trailing newlines collapse",
			in:   "FROM alpine\n\n\n",
			want: "FROM alpine\n",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "only fences",
			in:   "```Dockerfile\n```",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

var awkwardInputs = []string{
	"",
	"   ",
	"```",
	"````",
	"``````",
	"``x```y`",
	"``\n```\n`x",
	"```docker-file   FROM scratch```",
	"a\r\r\nb",
	"  Dockerfile  \n```\n",
	"Here is the Dockerfile:\n```Dockerfile\nFROM node:20\n```\nEnjoy!",
	"FROM node:20 AS build\n\tRUN npm ci\n\nFROM nginx\n",
	"\r\n\r\n",
}

func TestSanitizeIsIdempotent(t *testing.T) {
	for _, in := range awkwardInputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestSanitizeRemovesEveryFence(t *testing.T) {
	for _, in := range awkwardInputs {
		out := Sanitize(in)
		assert.NotContains(t, out, "```", "input %q", in)
		if out != "" {
			assert.True(t, strings.HasSuffix(out, "\n"), "input %q", in)
			assert.False(t, strings.HasSuffix(out, "\n\n"), "input %q", in)
		}
	}
}

func TestSanitizeCandidateKeepsProvenance(t *testing.T) {
	c := domain.RecipeCandidate{Content: "```\nFROM alpine\n```", Provenance: domain.ProvenanceModel}

	got := SanitizeCandidate(c)
	assert.Equal(t, "FROM alpine\n", got.Content)
	assert.Equal(t, domain.ProvenanceModel, got.Provenance)
	assert.Equal(t, "```\nFROM alpine\n```", c.Content)
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, lineCount(""))
	assert.Equal(t, 1, lineCount("FROM alpine\n"))
	assert.Equal(t, 3, lineCount("FROM alpine\nWORKDIR /app\nCMD [\"sh\"]\n"))
}
