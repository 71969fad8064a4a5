// Package model defines the data structures shared by the mirroring packages.
//
// # Owners and collections
//
// An [Owner] is a GitHub user or organization. Each owner has two listable
// collections, selected by [CollectionKind]: repositories and gists. Both
// enumerations carry the URL path segment GitHub uses for them:
//
//	Owner{Name: "kb-dk", Kind: OwnerOrg}.Kind.PathSegment() // "orgs"
//	KindGist.PathSegment()                                  // "gists"
//
// # Repository
//
// [Repository] is the normalized form of a listed item. For gists the
// identifier is the gist id. The identifier names the bare mirror directory
// (see [Repository.DirName]).
//
// # Journal
//
// [Run] and [MirrorRecord] are what the store package persists about each
// invocation and each repository outcome.
package model
