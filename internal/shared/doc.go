// Package shared holds helpers used across the strikecharts packages that
// belong to no single pipeline stage.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- A buffered slog handler for asserting on log output
//	- Workbook fixtures built with excelize
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteWorkbook(t, "Sheet1", testutil.StrikeRows(...))
//	    // run code under test, then
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "Report written")
//	}
package shared
