// Package intent turns a grid resolution and the set of overlapping language
// blocks into an assignment decision: one of four customer-intent labels, the
// primary block used for reporting, and a requires-attention flag for spots a
// person should look at.
//
// The classifier is a pure function of its inputs; it never touches storage.
package intent
