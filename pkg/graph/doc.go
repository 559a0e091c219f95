// Package graph exports a machine's transition index as a generic node/edge
// description and defines the Renderer contract diagram backends implement.
package graph
