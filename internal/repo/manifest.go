package repo

import (
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	// ManifestKey is the well-known object key the manifest is published
	// under. It is always excluded from the archive set.
	ManifestKey = "default.omx"

	// ModExt is the canonical extension for uploaded archives.
	ModExt = ".ozp"
)

// Repository is the published manifest document describing the archive
// set for download clients.
type Repository struct {
	XMLName    xml.Name   `xml:"Open_Mod_Manager_Repository"`
	UUID       string     `xml:"uuid"`
	Title      string     `xml:"title"`
	Downpath   string     `xml:"downpath"`
	References References `xml:"references"`
}

// References carries the archive entries and their count.
type References struct {
	Count int        `xml:"count,attr"`
	Mods  []ModEntry `xml:"mods"`
}

// ModEntry is one archive's metadata record within the manifest.
type ModEntry struct {
	Ident  string `xml:"ident,attr"`
	File   string `xml:"file,attr"`
	Bytes  uint64 `xml:"bytes,attr"`
	Xxhsum string `xml:"xxhsum,attr"`
}

// RepositoryUUID derives the stable manifest id for a public URL: a
// version-5 UUID over the DNS namespace and the canonicalized URL
// string. The same configuration always yields the same id.
func RepositoryUUID(publicURL string) string {
	if u, err := url.Parse(publicURL); err == nil {
		if u.Path == "" {
			u.Path = "/"
		}
		publicURL = u.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(publicURL)).String()
}

// modIdent maps an object key to its manifest ident by stripping the
// archive extension if present. Idents are case-sensitive.
func modIdent(key string) string {
	return strings.TrimSuffix(key, ModExt)
}

// modKey normalizes an uploaded archive name to a key with exactly one
// canonical extension.
func modKey(name string) string {
	return strings.TrimSuffix(name, ModExt) + ModExt
}
