// Package tpi owns the Envisalink TPI wire contract.
//
// Ownership boundary:
// - command table and classification
// - checksum and packet validation
// - field extraction and login packet encoding
//
// Every function here is pure. Stream splitting lives in tpi/frame.
package tpi
