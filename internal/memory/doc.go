// Package memory holds the three conversation memory tiers: working
// memory (session-scoped key/value state such as the active graph or a
// pending research confirmation), short-term memory (recent turns fed
// back into prompts), and long-term memory (importance-filtered turns
// kept across sessions).
//
// Working memory is an interface because it must survive process
// restarts in multi-instance deployments; the NATS JetStream KV
// implementation covers that, the in-memory one covers single-node and
// tests.
package memory
