// Package decision implements the decision-graph traversal engine that
// guides a user through a sequence of causally-dependent renovation
// choices.
//
// A decision graph is a directed structure of question nodes with
// answer-conditioned transitions. The catalogue of graphs is declarative
// YAML data, validated once at load time and immutable afterwards. The
// engine derives per-session traversal state by replaying recorded
// answers from the root, resolving answers from free text, quick-reply
// payloads, and profile snapshots.
//
// Unknown graph or node IDs yield nil/empty results everywhere; the
// only errors raised by this package are load-time validation failures.
package decision
