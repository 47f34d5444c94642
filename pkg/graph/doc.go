// Package graph defines the scene graph of a configurable product.
// The scene graph is an immutable DAG of geometry, transforms, named
// groups and cameras produced by evaluating a scene script. Node names
// follow the part and part__variant naming convention.
package graph
