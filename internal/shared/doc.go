// Package shared holds helpers used across the sales report packages.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- an in-memory slog handler with assertions on messages and attributes
//	- builders for sales workbooks (excelize) and zip archives
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    archive := testutil.Archive(t, testutil.ArchiveEntry{
//	        Name: "north.xlsx",
//	        Data: testutil.SalesWorkbook(t, testutil.SalesRow("X1", 10, "2023-07-05", "Acme", "Tools", "Pro", "North", 5.0)),
//	    })
//	    ...
//	}
//
// Business logic does not belong here.
package shared
