// Package testsupport provides shared helpers for rigconvert tests: temp
// configs, store wrappers that count or fail saves, PNG writers, and small
// rig fixtures.
package testsupport
