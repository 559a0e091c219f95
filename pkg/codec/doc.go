// Package codec moves state and action values across process boundaries.
//
// Values travel as {"type": "Idle", "data": {"stock": 1}} envelopes; a
// Registry built from a machine's types maps the name back to its Go type.
package codec
