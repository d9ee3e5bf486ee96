// Package testutil provides deterministic test data for mmcore packages.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Text
//
//	rng := testutil.NewRNG(seed)
//	text := rng.Text(4096)              // printable lines, no rule characters
//
// # Synthetic Databases
//
//	db, headers := rng.Database(8, 2048)
//	// headers[i] is the offset of the '$' opening chapter i
//
// # Fixed-Width Lines
//
//	buf := testutil.FixedWidthLines(rng.Word(30), rows)
//	// offset k is on line 1 + k/31, column 1 + k%31
package testutil
