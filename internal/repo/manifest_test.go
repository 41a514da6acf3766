package repo

import (
	"encoding/xml"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRepositoryUUIDDeterministic(t *testing.T) {
	t.Parallel()

	first := RepositoryUUID("https://mods.example.com")
	second := RepositoryUUID("https://mods.example.com")
	require.Equal(t, first, second, "same public URL must yield the same uuid")

	other := RepositoryUUID("https://other.example.com")
	require.NotEqual(t, first, other, "different public URL must yield a different uuid")

	parsed, err := uuid.Parse(first)
	require.NoError(t, err, "uuid must parse")
	require.Equal(t, uuid.Version(5), parsed.Version(), "uuid must be name-based version 5")
}

func TestRepositoryUUIDCanonicalizesURL(t *testing.T) {
	t.Parallel()

	bare := RepositoryUUID("https://mods.example.com")
	slashed := RepositoryUUID("https://mods.example.com/")
	require.Equal(t, bare, slashed, "trailing slash must not change the uuid")
}

func TestModIdentAndKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ident string
		key   string
	}{
		{name: "foo", ident: "foo", key: "foo.ozp"},
		{name: "foo.ozp", ident: "foo", key: "foo.ozp"},
		{name: "foo.zip", ident: "foo.zip", key: "foo.zip.ozp"},
		{name: "Foo.ozp", ident: "Foo", key: "Foo.ozp"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.key, modKey(tc.name), "modKey")
			require.Equal(t, tc.ident, modIdent(modKey(tc.name)), "modIdent")
		})
	}
}

func TestManifestSerialization(t *testing.T) {
	t.Parallel()

	repository := Repository{
		UUID:  RepositoryUUID("https://mods.example.com"),
		Title: "Test Mods",
		References: References{
			Count: 1,
			Mods: []ModEntry{
				{Ident: "demo", File: "demo.ozp", Bytes: 10, Xxhsum: "ab54d286b49e14cc"},
			},
		},
	}

	doc, err := xml.Marshal(repository)
	require.NoError(t, err, "marshaling manifest")

	out := string(doc)
	require.Contains(t, out, "<Open_Mod_Manager_Repository>")
	require.Contains(t, out, "<downpath></downpath>")
	require.Contains(t, out, `<references count="1">`)
	require.Contains(t, out, `<mods ident="demo" file="demo.ozp" bytes="10" xxhsum="ab54d286b49e14cc">`)

	// The document must round-trip for download clients.
	var decoded Repository
	require.NoError(t, xml.Unmarshal(doc, &decoded), "unmarshaling manifest")
	require.Equal(t, repository.UUID, decoded.UUID)
	require.Equal(t, repository.References.Mods, decoded.References.Mods)
}
