// Package shell provides shell detection and login-shell switching for
// zshup.
//
// This package handles:
//   - Detecting the user's current shell (bash, zsh)
//   - Locating shell configuration files (rc files)
//   - Switching the login shell to zsh via chsh
//
// # Shell Detection
//
// Shell detection tries multiple methods:
//  1. $SHELL environment variable (most reliable)
//  2. The login shell recorded in /etc/passwd (fallback)
//
// # Login Shell Switching
//
// Switching the login shell is best-effort: chsh may prompt for a
// password, the shell may be missing from /etc/shells, or chsh may not be
// installed at all. None of these abort a zshup run; the failure is
// reported as a warning and the rest of the setup completes.
package shell
