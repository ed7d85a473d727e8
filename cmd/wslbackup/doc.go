// Package main provides the command-line interface for the wslbackup tool.
//
// This package defines the entry point for exporting a WSL distribution with
// the backup library. It handles flag parsing, logging setup, signal handling
// and orchestration of the backup workflow.
//
// Usage:
//
//	wslbackup <parent_dir> <distribution_name> [-c|--compress] [--vhdx] [--explorer] [--loglevel LEVEL]
//
// The process exits 0 on success, 1 when the backup failed, 2 on usage or
// configuration errors, 3 when the running instance could not be terminated
// and 130 when interrupted.
//
// For core backup logic, see the backup package.
package main
