// Package research implements the deep-research flow: trigger detection
// on user messages, a confirm/decline handshake persisted in working
// memory, and the multi-call report pipeline that writes a structured
// report one section at a time.
//
// The handshake is deliberately exact-match only. Confirm phrases like
// 行 or 好 are single characters that occur inside countless ordinary
// words (银行, 好像), so substring matching would hijack unrelated
// messages; a user who says anything other than a listed phrase simply
// gets a normal answer and the pending request is dropped.
package research
