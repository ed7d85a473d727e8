// Package backup exports WSL distributions to archive files by driving
// wsl.exe, and optionally zstd, as child processes.
//
// The package is designed to be used in CLI tools or scheduled tasks on a
// Windows host. It covers the whole lifecycle of one backup:
//
//   - detecting a running wsl.exe front-end and terminating the instance
//   - exporting as tar or vhdx, straight to disk or through zstd
//   - removing partial archives when an export fails or is interrupted
//   - writing a JSON manifest next to a finished archive
//
// Example usage:
//
//	settings, _ := backup.LoadSettings("")
//	b := backup.New(logger, settings)
//	cfg := backup.Config{ParentDir: `D:\Backups`, Distribution: "Ubuntu", Compress: true}
//	res, err := b.RunBackup(ctx, cfg, backup.ArchivePath(cfg, b.Now()))
//
// For CLI orchestration, see cmd/wslbackup/workflow.go.
package backup
