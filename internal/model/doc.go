// Package model holds the immutable world definition: maps, roads, the
// road index used to fit a moving avatar back onto the road network,
// offices and loot type catalogs. Nothing in this package mutates after
// a Map has been built by the loader.
package model
