// Package preflight provides readiness checks for the paths and store that
// rigconvert depends on.
//
// The CLI "rigconvert doctor" command runs RunAll and prints each result;
// "rigconvert convert" runs the same checks first and refuses to start when
// one fails.
package preflight
