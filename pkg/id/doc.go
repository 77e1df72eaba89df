// Package id generates ULIDs, used for joke batch identity and request ids.
package id
