/*
Package index builds the transition index of a machine.

Each declaration is expanded over the cross product of its state and action
descriptors into concrete edges keyed by (state type, action type). Building
fails on the first ambiguous pair; a built index is never mutated and serves
lookups in constant time.
*/
package index
