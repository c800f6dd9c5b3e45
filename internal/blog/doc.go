// Package blog defines the post model shared by the loader, enrichment,
// renderer, and artifact writers, together with the small collaborator
// interfaces the build pipeline is assembled from.
package blog
