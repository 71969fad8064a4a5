package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_DirName(t *testing.T) {
	r := Repository{Identifier: "84981145fe5cc7860b65e39bc0f27fb7"}
	assert.Equal(t, "84981145fe5cc7860b65e39bc0f27fb7.git", r.DirName())
}

func TestRepository_Summary(t *testing.T) {
	tests := []struct {
		name        string
		description string
		max         int
		want        string
	}{
		{name: "single line", description: "tools", max: 60, want: "tools"},
		{name: "first line only", description: "first\nsecond", max: 60, want: "first"},
		{name: "crlf", description: "first\r\nsecond", max: 60, want: "first"},
		{name: "truncated", description: "abcdefghij", max: 8, want: "abcde..."},
		{name: "multibyte", description: "æøåæøåæøå", max: 6, want: "æøå..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Repository{Description: tt.description}
			assert.Equal(t, tt.want, r.Summary(tt.max))
		})
	}
}

func TestRepository_DescriptionText(t *testing.T) {
	r := Repository{Description: "d"}
	assert.Equal(t, "d", r.DescriptionText())

	r.HTMLURL = "https://github.com/kb-dk/a"
	assert.Equal(t, "d\n\nhttps://github.com/kb-dk/a", r.DescriptionText())
}

func TestParseCollectionKinds(t *testing.T) {
	kinds, err := ParseCollectionKinds([]string{"gists", "repos", "gist"})
	require.NoError(t, err)
	assert.Equal(t, []CollectionKind{KindGist, KindRepository}, kinds)

	_, err = ParseCollectionKinds([]string{"wikis"})
	require.Error(t, err)
}

func TestPathSegments(t *testing.T) {
	assert.Equal(t, "users", OwnerUser.PathSegment())
	assert.Equal(t, "orgs", OwnerOrg.PathSegment())
	assert.Equal(t, "repos", KindRepository.PathSegment())
	assert.Equal(t, "gists", KindGist.PathSegment())
}

func TestTargets(t *testing.T) {
	targets := Targets([]string{"kb-dk"}, []string{"alice", "bob"}, AllKinds)
	require.Len(t, targets, 3)

	assert.Equal(t, Owner{Name: "kb-dk", Kind: OwnerOrg}, targets[0].Owner)
	assert.Equal(t, Owner{Name: "alice", Kind: OwnerUser}, targets[1].Owner)
	assert.Equal(t, Owner{Name: "bob", Kind: OwnerUser}, targets[2].Owner)
	assert.Equal(t, AllKinds, targets[2].Kinds)
}

func TestMirrorRecord_Key(t *testing.T) {
	rec := MirrorRecord{Owner: "alice", OwnerKind: OwnerUser, Kind: KindGist, Identifier: "abc"}
	assert.Equal(t, "users/alice/gists/abc", rec.Key())
}
