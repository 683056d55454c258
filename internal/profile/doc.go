// Package profile holds the user profile value object and the signal
// extraction that keeps it current from conversation text.
//
// The profile is an explicit value object with named optional
// sub-records (family info, brand mentions, decisions, spending),
// updated through builder methods only. Extraction fills empty core
// fields (area, budget, styles) without overwriting values the user has
// already established.
package profile
