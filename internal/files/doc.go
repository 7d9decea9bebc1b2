// Package files provides the file system operations the report runner needs
// around the workbook it rewrites in place.
//
// Manager copies files and keeps a backup of the workbook before it is first
// overwritten.
//
// Example usage:
//
//	manager := files.NewManager(logger)
//	backup, err := manager.Backup("aircraftWildlifeStrikes.xlsx")
//	// backup == "aircraftWildlifeStrikes.bak.xlsx"
package files
