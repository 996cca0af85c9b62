// Package textutil normalizes asset names into store-safe path segments.
//
// Names are NFC-normalized before unsafe characters are replaced so that the
// same visual name always produces the same artifact path. Tokens used in
// identifiers additionally fold diacritics to ASCII.
package textutil
