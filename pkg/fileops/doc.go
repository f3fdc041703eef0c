// Package fileops provides the file primitives ruler builds its outputs on.
//
// # Writing outputs
//
// Every generated file goes through WriteWithBackup, which creates missing
// parent directories, snapshots an existing file to "<path>.bak" and then
// writes the new content atomically:
//
//	res, err := fileops.WriteWithBackup(path, content)
//	if err != nil {
//	    return fmt.Errorf("write instructions: %w", err)
//	}
//	if res.BackupPath != "" {
//	    logger.Debug("Backed up previous file", "backup", res.BackupPath)
//	}
//
// The backup is a single generation: each run replaces the previous one.
//
// # Scanning inputs
//
// SecureDirectoryScanner walks a directory through an os.Root so reads cannot
// escape the scan root, skips dependency and build directories by name, and
// returns results sorted by relative path:
//
//	opts := fileops.DefaultScanOptions()
//	opts.FileFilter = fileops.HasExtension(".md")
//	scanner, err := fileops.NewDirectoryScanner(rulesDir, opts)
//
// # Validation
//
// ValidateFileSizeLimit and ValidateFileInDirectory guard reads of user
// supplied files; RelativeSlashPath and SanitizeIdentifier normalize paths and
// names for output.
package fileops
