// Package match finds occurrences of a template inside an image by comparing
// every placement byte by byte.
package match
