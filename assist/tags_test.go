package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag(t *testing.T) {
	cases := map[string]string{
		" C++ ":            "c++",
		"Machine Learning": "machine-learning",
		"Node.js":          "nodejs",
		"REACT":            "react",
		"  ":               "",
		"c#":               "c",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTag(in), "input %q", in)
	}
}

func TestParseTagsNormalizesAndDedupes(t *testing.T) {
	assert.Equal(t, []string{"c++", "react"}, ParseTags("  C++ , React React, "))
	assert.Equal(t, []string{"react", "node"}, ParseTags("react, node, node"))
}

func TestParseTagsDelimiters(t *testing.T) {
	assert.Equal(t, []string{"go", "docker", "k8s", "helm"}, ParseTags("go; docker | k8s / helm"))
	assert.Equal(t, []string{"go", "docker"}, ParseTags("go docker"))
}

func TestParseTagsStripsLabelAndBullets(t *testing.T) {
	assert.Equal(t, []string{"react", "node"}, ParseTags("Tags: react, node"))
	assert.Equal(t, []string{"react", "node"}, ParseTags("- react\n- node"))
}

func TestParseTagsEmpty(t *testing.T) {
	assert.Nil(t, ParseTags(""))
	assert.Nil(t, ParseTags("   \n  "))
}

func TestMergeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web-dev"}, MergeTags([]string{"go"}, []string{"Go", "Web Dev"}))
	assert.Equal(t, []string{"go"}, MergeTags(nil, []string{"go", "GO"}))
	assert.Equal(t, []string{"go"}, MergeTags([]string{"go"}, nil))
}
